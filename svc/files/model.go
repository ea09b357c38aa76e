package files

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/filevault/pkg/sanitizer"
)

// File is a stored upload together with its access list.
//
// OwnerEmail is authoritative for permission checks. Owner may be missing or
// stale on documents written by older versions of the application.
type File struct {
	ID           string     `json:"id" bson:"_id"`
	Name         string     `json:"name" bson:"name"`
	URL          string     `json:"url" bson:"url"`
	Type         string     `json:"type" bson:"type"`
	Extension    string     `json:"extension" bson:"extension"`
	ContentType  string     `json:"contentType,omitempty" bson:"content_type,omitempty"`
	Size         Size       `json:"size" bson:"size"`
	BucketFileID string     `json:"bucketFileId" bson:"bucket_file_id"`
	BlobKey      string     `json:"-" bson:"blob_key,omitempty"`
	Owner        OwnerRef   `json:"owner" bson:"owner"`
	OwnerEmail   string     `json:"ownerEmail,omitempty" bson:"owner_email,omitempty"`
	OwnerName    string     `json:"ownerName,omitempty" bson:"owner_name,omitempty"`
	Users        []string   `json:"users" bson:"users"`
	AllowReshare *bool      `json:"allowReshare,omitempty" bson:"allow_reshare,omitempty"`
	Version      int64      `json:"version" bson:"version"`
	DeletedAt    *time.Time `json:"-" bson:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updated_at"`
}

// ReshareAllowed reports whether collaborators may add collaborators.
// Only an explicit false disables it.
func (f *File) ReshareAllowed() bool {
	return f.AllowReshare == nil || *f.AllowReshare
}

// HasUser reports whether email is on the access list.
func (f *File) HasUser(email string) bool {
	return email != "" && slices.Contains(f.Users, email)
}

// Marked reports whether the file is waiting to be purged.
func (f *File) Marked() bool {
	return f.DeletedAt != nil
}

// LatestDate is UpdatedAt, or CreatedAt when the file was never updated.
func (f *File) LatestDate() time.Time {
	if !f.UpdatedAt.IsZero() {
		return f.UpdatedAt
	}
	return f.CreatedAt
}

// Collaborators returns the access list without the owner.
func (f *File) Collaborators() []string {
	out := make([]string, 0, len(f.Users))
	for _, u := range f.Users {
		if u != f.OwnerEmail {
			out = append(out, u)
		}
	}
	return out
}

// normalizeEmails lowercases the stored owner email and access list. Older
// documents may hold mixed-case addresses; every comparison uses the
// normalized form, so stores call this on everything they read.
func (f *File) normalizeEmails() {
	f.OwnerEmail = sanitizer.NormalizeEmail(f.OwnerEmail)
	if f.Users != nil {
		f.Users = sanitizer.NormalizeEmails(f.Users)
	}
}

func (f *File) clone() *File {
	cp := *f
	cp.Users = slices.Clone(f.Users)
	if f.AllowReshare != nil {
		v := *f.AllowReshare
		cp.AllowReshare = &v
	}
	if f.DeletedAt != nil {
		t := *f.DeletedAt
		cp.DeletedAt = &t
	}
	if f.Owner.User != nil {
		u := *f.Owner.User
		cp.Owner.User = &u
	}
	return &cp
}

func boolPtr(v bool) *bool { return &v }

// OwnerKind tells how the owner field of a stored document was shaped.
type OwnerKind uint8

const (
	OwnerUnknown OwnerKind = iota
	OwnerByID
	OwnerInline
)

// InlineOwner is an owner embedded in the file document.
type InlineOwner struct {
	ID       string
	Email    string
	FullName string
}

// OwnerRef is the normalized owner reference. Documents may hold the owner
// as an id string, an ObjectID, an embedded user document or nothing at all.
// It is always written back as an id.
type OwnerRef struct {
	Kind OwnerKind
	ID   string
	User *InlineOwner
}

// OwnerID returns a reference to the user with the given id.
func OwnerID(id string) OwnerRef {
	if id == "" {
		return OwnerRef{}
	}
	return OwnerRef{Kind: OwnerByID, ID: id}
}

// Is reports whether the reference points at the user id.
func (o OwnerRef) Is(userID string) bool {
	return userID != "" && o.Kind != OwnerUnknown && o.ID == userID
}

func (o OwnerRef) MarshalBSONValue() (byte, []byte, error) {
	if o.ID == "" {
		return byte(bson.TypeNull), nil, nil
	}
	t, data, err := bson.MarshalValue(o.ID)
	return byte(t), data, err
}

func (o *OwnerRef) UnmarshalBSONValue(typ byte, data []byte) error {
	rv := bson.RawValue{Type: bson.Type(typ), Value: data}
	switch rv.Type {
	case bson.TypeNull, bson.TypeUndefined:
		*o = OwnerRef{}
	case bson.TypeString:
		*o = OwnerID(rv.StringValue())
	case bson.TypeObjectID:
		*o = OwnerID(rv.ObjectID().Hex())
	case bson.TypeEmbeddedDocument:
		doc := rv.Document()
		u := &InlineOwner{
			ID:       firstID(doc, "_id", "id", "$id"),
			Email:    firstString(doc, "email"),
			FullName: firstString(doc, "full_name", "fullName"),
		}
		*o = OwnerRef{Kind: OwnerInline, ID: u.ID, User: u}
	default:
		return fmt.Errorf("decode owner: unsupported bson type %s", rv.Type)
	}
	return nil
}

func (o OwnerRef) MarshalJSON() ([]byte, error) {
	if o.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(o.ID)
}

func (o *OwnerRef) UnmarshalJSON(data []byte) error {
	var id *string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("decode owner: %w", err)
	}
	if id == nil {
		*o = OwnerRef{}
		return nil
	}
	*o = OwnerID(*id)
	return nil
}

func firstString(doc bson.Raw, keys ...string) string {
	for _, k := range keys {
		if s, ok := doc.Lookup(k).StringValueOK(); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstID(doc bson.Raw, keys ...string) string {
	for _, k := range keys {
		v := doc.Lookup(k)
		if s, ok := v.StringValueOK(); ok && s != "" {
			return s
		}
		if oid, ok := v.ObjectIDOK(); ok {
			return oid.Hex()
		}
	}
	return ""
}

// Size is a byte count. Older documents stored it as a numeric string,
// so both numbers and strings are accepted on decode.
type Size int64

func (s *Size) UnmarshalBSONValue(typ byte, data []byte) error {
	rv := bson.RawValue{Type: bson.Type(typ), Value: data}
	switch rv.Type {
	case bson.TypeInt32:
		*s = Size(rv.Int32())
	case bson.TypeInt64:
		*s = Size(rv.Int64())
	case bson.TypeDouble:
		*s = Size(rv.Double())
	case bson.TypeString:
		*s = ParseSize(rv.StringValue())
	case bson.TypeNull, bson.TypeUndefined:
		*s = 0
	default:
		return fmt.Errorf("decode size: unsupported bson type %s", rv.Type)
	}
	return nil
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode size: %w", err)
	}
	switch n := v.(type) {
	case float64:
		*s = Size(n)
	case string:
		*s = ParseSize(n)
	case nil:
		*s = 0
	default:
		return fmt.Errorf("decode size: unsupported value %v", v)
	}
	return nil
}

// ParseSize reads a byte count from a string. Leading digits are used and
// anything unparsable counts as zero.
func ParseSize(v string) Size {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return Size(n)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Size(f)
	}
	end := 0
	if end < len(v) && (v[end] == '-' || v[end] == '+') {
		end++
	}
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(v[:end], 10, 64)
	if err != nil {
		return 0
	}
	return Size(n)
}

package files

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/filevault/pkg/file"
	"github.com/dmitrymomot/filevault/pkg/sanitizer"
)

// Store persists file documents.
//
// Get returns marked documents too, callers decide whether they are visible.
// Update is a compare-and-set on f.Version: it writes f with the version
// incremented only when the stored version still equals f.Version, and
// returns ErrVersionConflict otherwise.
type Store interface {
	Insert(ctx context.Context, f *File) error
	Get(ctx context.Context, id string) (*File, error)
	Update(ctx context.Context, f *File) error
	Delete(ctx context.Context, id string) error
	// List returns the unmarked files visible to the query's owner id or email.
	List(ctx context.Context, q ListQuery) ([]*File, error)
	// ListMarkedBefore returns files marked for deletion before t.
	ListMarkedBefore(ctx context.Context, t time.Time) ([]*File, error)
	// ListOwnedByID returns unmarked files whose owner reference is ownerID.
	ListOwnedByID(ctx context.Context, ownerID string) ([]*File, error)
}

// ListQuery filters a listing. An empty Types matches every type and a
// zero Limit means no limit.
type ListQuery struct {
	OwnerID string
	Email   string
	Types   []string
	Search  string
	Sort    Sort
	Limit   int
}

// SortField is a sortable file attribute.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByName      SortField = "name"
	SortBySize      SortField = "size"
)

// Sort orders a listing.
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort lists the newest files first.
var DefaultSort = Sort{Field: SortByCreatedAt, Desc: true}

// ParseSort reads "<field>-<asc|desc>", e.g. "$createdAt-desc" or "name-asc".
// Unknown values give DefaultSort.
func ParseSort(v string) Sort {
	field, dir, ok := strings.Cut(strings.TrimSpace(v), "-")
	if !ok {
		return DefaultSort
	}
	s := Sort{Desc: strings.EqualFold(dir, "desc")}
	if !s.Desc && !strings.EqualFold(dir, "asc") {
		return DefaultSort
	}
	switch strings.TrimPrefix(field, "$") {
	case "createdAt", "created_at":
		s.Field = SortByCreatedAt
	case "name":
		s.Field = SortByName
	case "size":
		s.Field = SortBySize
	default:
		return DefaultSort
	}
	return s
}

// navigationTypes maps listing categories to stored types.
var navigationTypes = map[string][]file.Type{
	"documents": {file.TypeDocument},
	"images":    {file.TypeImage},
	"media":     {file.TypeVideo, file.TypeAudio},
	"others":    {file.TypeOther},
}

// ExpandTypes resolves categories ("documents", "images", "media", "others")
// and raw type names into the distinct stored types.
func ExpandTypes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if mapped, ok := navigationTypes[t]; ok {
			for _, m := range mapped {
				out = append(out, string(m))
			}
			continue
		}
		out = append(out, t)
	}
	return sanitizer.Deduplicate(out)
}

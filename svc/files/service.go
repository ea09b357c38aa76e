package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/filevault/pkg/events"
	"github.com/dmitrymomot/filevault/pkg/file"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/queue"
	"github.com/dmitrymomot/filevault/pkg/sanitizer"
	"github.com/dmitrymomot/filevault/pkg/validator"
	"github.com/dmitrymomot/filevault/svc/users"
)

// Enqueuer schedules background work. *queue.Enqueuer satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
}

// Service implements file ownership, sharing and lifecycle.
type Service struct {
	store    Store
	users    users.Store
	blobs    file.Storage
	policy   *Policy
	owners   *OwnerNames
	enqueuer Enqueuer
	events   events.Publisher
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEnqueuer makes DeleteFile purge in the background. Without it the
// purge runs inline right after the file is marked.
func WithEnqueuer(e Enqueuer) Option {
	return func(s *Service) { s.enqueuer = e }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

func WithPolicy(p *Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// NewService wires the file service. blobs may be nil for read-only use.
func NewService(ctx context.Context, store Store, userStore users.Store, blobs file.Storage, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	s := &Service{
		store:  store,
		users:  userStore,
		blobs:  blobs,
		events: events.NoopPublisher{},
		cfg:    DefaultConfig(),
		logger: logger.Noop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy == nil {
		p, err := NewPolicy(ctx)
		if err != nil {
			return nil, err
		}
		s.policy = p
	}
	s.cfg.UpdateAttempts = max(s.cfg.UpdateAttempts, 1)
	s.owners = NewOwnerNames(userStore, s.cfg.OwnerCacheSize, s.cfg.OwnerCacheTTL, s.logger)
	return s, nil
}

// Owners exposes the owner-name resolver.
func (s *Service) Owners() *OwnerNames {
	return s.owners
}

// UploadInput is a file received from a client.
type UploadInput struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// Upload stores the blob first and then the document. When the document
// cannot be written the blob is removed again.
func (s *Service) Upload(ctx context.Context, actor *users.User, in UploadInput) (*File, error) {
	if actor == nil {
		return nil, ErrPermissionDenied
	}
	if s.blobs == nil {
		return nil, ErrBlobStorageNil
	}
	if err := file.ValidateSize(in.Size, s.cfg.MaxUploadSize); err != nil {
		return nil, err
	}

	name := sanitizer.FileName(in.Name)
	typ, ext := file.Classify(name)

	body := in.Body
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		detected, r, err := file.DetectContentType(body)
		if err != nil {
			return nil, err
		}
		contentType, body = detected, r
	}

	bucketFileID := uuid.NewString()
	key := file.ObjectKey(bucketFileID, name)
	obj, err := s.blobs.Put(ctx, key, body, in.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	email := sanitizer.NormalizeEmail(actor.Email)
	now := s.now().UTC()
	f := &File{
		ID:           uuid.NewString(),
		Name:         name,
		URL:          obj.URL,
		Type:         string(typ),
		Extension:    ext,
		ContentType:  contentType,
		Size:         Size(in.Size),
		BucketFileID: bucketFileID,
		BlobKey:      key,
		Owner:        OwnerID(actor.ID),
		OwnerEmail:   email,
		OwnerName:    actor.FullName,
		Users:        []string{email},
		AllowReshare: boolPtr(true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, f); err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil && !errors.Is(derr, file.ErrFileNotFound) {
			s.logger.ErrorContext(ctx, "failed to remove orphaned blob",
				slog.String("key", key),
				logger.Error(derr))
			return nil, errors.Join(err, derr)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "file uploaded",
		logger.FileID(f.ID),
		logger.UserID(actor.ID),
		slog.Int64("size", in.Size))
	s.publish(ctx, SubjectUploaded, f, actor, email)
	return f, nil
}

// ListParams filters List. Sort uses ParseSort syntax.
type ListParams struct {
	Types  []string
	Search string
	Sort   string
	Limit  int
}

// List returns the files the actor owns or was given access to. Each file
// carries its resolved owner display name.
func (s *Service) List(ctx context.Context, actor *users.User, p ListParams) ([]*File, error) {
	if actor == nil {
		return nil, ErrPermissionDenied
	}
	limit := p.Limit
	if limit <= 0 || (s.cfg.MaxListLimit > 0 && limit > s.cfg.MaxListLimit) {
		limit = s.cfg.MaxListLimit
	}

	list, err := s.store.List(ctx, ListQuery{
		OwnerID: actor.ID,
		Email:   sanitizer.NormalizeEmail(actor.Email),
		Types:   ExpandTypes(p.Types),
		Search:  strings.TrimSpace(p.Search),
		Sort:    ParseSort(p.Sort),
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	for _, f := range list {
		f.OwnerName = s.owners.Resolve(ctx, f, actor)
	}
	return list, nil
}

// Details is a file with the actor's permissions on it.
type Details struct {
	File *File `json:"file"`
	Access
	Collaborators []string `json:"collaborators"`
	OwnerName     string   `json:"ownerName"`
}

// Get returns the file and what the actor may do with it.
func (s *Service) Get(ctx context.Context, actor *users.User, id string) (*Details, error) {
	f, access, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &Details{
		File:          f,
		Access:        access,
		Collaborators: f.Collaborators(),
		OwnerName:     s.owners.Resolve(ctx, f, actor),
	}, nil
}

// OwnerName resolves the owner's display name for a visible file.
func (s *Service) OwnerName(ctx context.Context, actor *users.User, id string) (string, error) {
	f, _, err := s.visible(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return s.owners.Resolve(ctx, f, actor), nil
}

// Rename changes the display name. The stored extension is kept.
func (s *Service) Rename(ctx context.Context, actor *users.User, id, name string) (*File, error) {
	name = sanitizer.SingleLine(strings.TrimSpace(name))
	if err := validator.Apply(
		validator.RequiredString("name", name),
		validator.MaxLenString("name", name, 255),
	); err != nil {
		return nil, err
	}
	name = sanitizer.FileName(name)

	f, _, err := s.mutate(ctx, actor, id, func(f *File, access Access) (bool, error) {
		if err := applyRename(f, access, actor, name); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, SubjectRenamed, f, actor)
	return f, nil
}

// Share grants emails access to the file. Every email must belong to a
// registered user; the first unknown one fails the whole request.
func (s *Service) Share(ctx context.Context, actor *users.User, id string, emails []string) (*File, error) {
	emails = sanitizer.NormalizeEmails(emails)
	if len(emails) == 0 {
		return nil, ErrNoEmails
	}

	var (
		resolved bool
		added    []string
	)
	f, changed, err := s.mutate(ctx, actor, id, func(f *File, access Access) (bool, error) {
		if !access.CanShare {
			return false, ErrShareDenied
		}
		if !resolved {
			if err := s.resolveEmails(ctx, emails); err != nil {
				return false, err
			}
			resolved = true
		}
		grown, changed, err := applyShare(f, access, actor, emails)
		added = grown
		return changed, err
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return f, nil
	}

	s.logger.InfoContext(ctx, "file shared",
		logger.FileID(f.ID),
		logger.UserID(actor.ID),
		slog.Int("added", len(added)))
	s.publish(ctx, SubjectShared, f, actor, added...)
	return f, nil
}

func (s *Service) resolveEmails(ctx context.Context, emails []string) error {
	for _, e := range emails {
		if _, err := s.users.GetByEmail(ctx, e); err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				return fmt.Errorf("%w: %s", users.ErrUserNotFound, e)
			}
			return fmt.Errorf("look up %s: %w", e, err)
		}
	}
	return nil
}

// RemoveCollaborator takes email off the access list. The owner cannot be removed.
func (s *Service) RemoveCollaborator(ctx context.Context, actor *users.User, id, email string) (*File, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(validator.RequiredString("email", email)); err != nil {
		return nil, err
	}

	f, changed, err := s.mutate(ctx, actor, id, func(f *File, access Access) (bool, error) {
		return applyRemove(f, access, email)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return f, nil
	}
	s.publish(ctx, SubjectCollaboratorRemoved, f, actor, email)
	return f, nil
}

// ToggleAllowReshare lets or stops collaborators adding collaborators.
func (s *Service) ToggleAllowReshare(ctx context.Context, actor *users.User, id string, allow bool) (*File, error) {
	f, changed, err := s.mutate(ctx, actor, id, func(f *File, access Access) (bool, error) {
		return applyToggle(f, access, allow)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return f, nil
	}
	s.publish(ctx, SubjectReshareToggled, f, actor)
	return f, nil
}

// DeleteFile marks the file and schedules the purge of its blob and document.
// A marked file is invisible to every other operation.
func (s *Service) DeleteFile(ctx context.Context, actor *users.User, id string) error {
	at := s.now().UTC()
	f, _, err := s.mutate(ctx, actor, id, func(f *File, access Access) (bool, error) {
		return true, applyMark(f, access, at)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "file marked for deletion",
		logger.FileID(f.ID),
		logger.UserID(actor.ID))
	s.publish(ctx, SubjectDeleted, f, actor, f.Users...)

	if s.enqueuer == nil {
		return s.Purge(context.WithoutCancel(ctx), f.ID)
	}
	if err := s.enqueuer.Enqueue(ctx, PurgeFile{FileID: f.ID}); err != nil {
		// the sweep picks the file up later
		s.logger.WarnContext(ctx, "failed to enqueue purge",
			logger.FileID(f.ID),
			logger.Error(err))
	}
	return nil
}

// Purge removes the blob and then the document of a marked file.
// Missing blobs and documents count as already purged.
func (s *Service) Purge(ctx context.Context, id string) error {
	f, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil
		}
		return fmt.Errorf("load file %s: %w", id, err)
	}
	if !f.Marked() {
		s.logger.WarnContext(ctx, "refusing to purge unmarked file", logger.FileID(id))
		return nil
	}

	if key := blobKey(f); key != "" && s.blobs != nil {
		if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, file.ErrFileNotFound) {
			return fmt.Errorf("delete blob %s: %w", key, err)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrFileNotFound) {
		return fmt.Errorf("delete file %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "file purged", logger.FileID(id))
	return nil
}

func blobKey(f *File) string {
	if f.BlobKey != "" {
		return f.BlobKey
	}
	if f.BucketFileID != "" && f.Name != "" {
		return file.ObjectKey(f.BucketFileID, f.Name)
	}
	return ""
}

// Sweep re-schedules purges for files marked longer than the grace period.
func (s *Service) Sweep(ctx context.Context) error {
	marked, err := s.store.ListMarkedBefore(ctx, s.now().Add(-s.cfg.PurgeGrace))
	if err != nil {
		return fmt.Errorf("list marked files: %w", err)
	}

	var errs []error
	for _, f := range marked {
		if s.enqueuer == nil {
			err = s.Purge(ctx, f.ID)
		} else {
			err = s.enqueuer.Enqueue(ctx, PurgeFile{FileID: f.ID})
		}
		if err != nil {
			errs = append(errs, err)
			s.logger.ErrorContext(ctx, "sweep failed for file",
				logger.FileID(f.ID),
				logger.Error(err))
		}
	}
	if len(marked) > 0 {
		s.logger.InfoContext(ctx, "sweep finished",
			slog.Int("files", len(marked)),
			slog.Int("failed", len(errs)))
	}
	return errors.Join(errs...)
}

// Usage sums the sizes of every file visible to the actor. It never fails,
// store errors give an empty summary.
func (s *Service) Usage(ctx context.Context, actor *users.User) UsageSummary {
	if actor == nil {
		return EmptyUsage()
	}
	list, err := s.store.List(ctx, ListQuery{
		OwnerID: actor.ID,
		Email:   sanitizer.NormalizeEmail(actor.Email),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to compute usage",
			logger.UserID(actor.ID),
			logger.Error(err))
		return EmptyUsage()
	}
	return ComputeUsage(list)
}

// Repair brings the files the actor owns by id up to the current document
// shape. It returns how many files were updated.
func (s *Service) Repair(ctx context.Context, actor *users.User) (int, error) {
	if actor == nil {
		return 0, ErrPermissionDenied
	}
	owned, err := s.store.ListOwnedByID(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("list owned files: %w", err)
	}

	email := sanitizer.NormalizeEmail(actor.Email)
	updated := 0
	for _, f := range owned {
		if !repairFile(f, email, actor) {
			continue
		}
		f.UpdatedAt = s.now().UTC()
		if err := s.store.Update(ctx, f); err != nil {
			s.logger.WarnContext(ctx, "failed to repair file",
				logger.FileID(f.ID),
				logger.Error(err))
			continue
		}
		updated++
	}

	s.logger.InfoContext(ctx, "files repaired",
		logger.UserID(actor.ID),
		slog.Int("updated", updated),
		slog.Int("owned", len(owned)))
	return updated, nil
}

func repairFile(f *File, email string, actor *users.User) bool {
	changed := false
	if f.OwnerEmail == "" {
		f.OwnerEmail = email
		changed = true
	}
	if !f.HasUser(f.OwnerEmail) {
		f.Users = append(f.Users, f.OwnerEmail)
		changed = true
	}
	if f.AllowReshare == nil {
		f.AllowReshare = boolPtr(true)
		changed = true
	}
	if actor.FullName != "" && f.OwnerName != actor.FullName && f.OwnerEmail == email {
		f.OwnerName = actor.FullName
		changed = true
	}
	if f.Owner.Kind != OwnerByID {
		f.Owner = OwnerID(actor.ID)
		changed = true
	}
	return changed
}

// visible loads a file the actor may read. Files the actor has no access
// to and marked files are reported as not found.
func (s *Service) visible(ctx context.Context, actor *users.User, id string) (*File, Access, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, Access{}, err
	}
	access := s.policy.Access(f, actor)
	if !access.CanRead {
		return nil, Access{}, notFound(id)
	}
	return f, access, nil
}

func (s *Service) load(ctx context.Context, id string) (*File, error) {
	if strings.TrimSpace(id) == "" {
		return nil, notFound(id)
	}
	f, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("load file %s: %w", id, err)
	}
	if f.Marked() {
		return nil, notFound(id)
	}
	return f, nil
}

// mutate loads the file, lets apply decide and change it, and writes it back
// with a version check. On a conflict the whole cycle runs again on a fresh
// copy, up to cfg.UpdateAttempts times. The bool reports whether a write
// happened; apply returning false leaves the document untouched.
func (s *Service) mutate(ctx context.Context, actor *users.User, id string, apply func(*File, Access) (bool, error)) (*File, bool, error) {
	if actor == nil {
		return nil, false, ErrPermissionDenied
	}
	for attempt := range s.cfg.UpdateAttempts {
		f, err := s.load(ctx, id)
		if err != nil {
			return nil, false, err
		}

		changed, err := apply(f, s.policy.Access(f, actor))
		if err != nil {
			if errors.Is(err, ErrFileNotFound) {
				return nil, false, notFound(id)
			}
			return nil, false, err
		}
		if !changed {
			return f, false, nil
		}

		f.UpdatedAt = s.now().UTC()
		err = s.store.Update(ctx, f)
		switch {
		case err == nil:
			return f, true, nil
		case errors.Is(err, ErrVersionConflict):
			s.logger.DebugContext(ctx, "file version conflict, retrying",
				logger.FileID(id),
				logger.RetryCount(attempt+1))
		case errors.Is(err, ErrFileNotFound):
			return nil, false, notFound(id)
		default:
			return nil, false, fmt.Errorf("update file %s: %w", id, err)
		}
	}
	return nil, false, ErrConcurrentUpdate
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrFileNotFound, id)
}

package files

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/filevault/pkg/cache"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/sanitizer"
	"github.com/dmitrymomot/filevault/svc/users"
)

const (
	// OwnerYou is shown to the owner of a file.
	OwnerYou = "You"
	// OwnerUnknownName is shown when nothing identifies the owner.
	OwnerUnknownName = "Unknown"
)

// OwnerNames resolves the display name of a file owner. Found names are
// cached by lookup key and concurrent lookups for the same key share one
// store round trip.
type OwnerNames struct {
	users  users.Store
	cache  *cache.LRU[string, string]
	group  singleflight.Group
	logger *slog.Logger
}

// NewOwnerNames creates a resolver caching up to size names for ttl.
// A non-positive size means 1024 entries.
func NewOwnerNames(store users.Store, size int, ttl time.Duration, log *slog.Logger) *OwnerNames {
	if size <= 0 {
		size = 1024
	}
	if log == nil {
		log = logger.Noop()
	}
	return &OwnerNames{
		users:  store,
		cache:  cache.NewLRU[string, string](size, cache.WithTTL(ttl)),
		logger: log,
	}
}

// Resolve never fails. The first step that yields a name wins:
// owner email lookup, owner id lookup, embedded owner, cached name, then a
// fallback derived from the viewer and the owner email.
func (r *OwnerNames) Resolve(ctx context.Context, f *File, viewer *users.User) string {
	if f.OwnerEmail != "" {
		if name := r.lookup(ctx, "email:"+f.OwnerEmail, func(ctx context.Context) (*users.User, error) {
			return r.users.GetByEmail(ctx, f.OwnerEmail)
		}); name != "" {
			return name
		}
	}

	if f.Owner.Kind == OwnerByID && f.Owner.ID != "" {
		if name := r.lookup(ctx, "id:"+f.Owner.ID, func(ctx context.Context) (*users.User, error) {
			return r.byAnyID(ctx, f.Owner.ID)
		}); name != "" {
			return name
		}
	}

	if f.Owner.Kind == OwnerInline && f.Owner.User != nil && f.Owner.User.FullName != "" {
		return f.Owner.User.FullName
	}

	if f.OwnerName != "" {
		return f.OwnerName
	}

	var email string
	if viewer != nil {
		email = sanitizer.NormalizeEmail(viewer.Email)
	}
	sharedViewer := email != "" && f.HasUser(email) && email != f.OwnerEmail
	if !sharedViewer && email != "" && email == f.OwnerEmail {
		return OwnerYou
	}
	if local := sanitizer.EmailLocalPart(f.OwnerEmail); local != "" {
		return local
	}
	return OwnerUnknownName
}

// Forget drops cached names for a user, e.g. after a profile change.
func (r *OwnerNames) Forget(u *users.User) {
	r.cache.Remove("email:" + u.Email)
	r.cache.Remove("id:" + u.ID)
	r.cache.Remove("id:" + u.AccountID)
}

func (r *OwnerNames) lookup(ctx context.Context, key string, find func(context.Context) (*users.User, error)) string {
	if name, ok := r.cache.Get(key); ok {
		return name
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		// a caller that missed the cache may arrive after the previous flight
		if name, ok := r.cache.Get(key); ok {
			return name, nil
		}
		u, err := find(ctx)
		if err != nil {
			return "", err
		}
		if u.FullName != "" {
			r.cache.Put(key, u.FullName)
		}
		return u.FullName, nil
	})
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			r.logger.WarnContext(ctx, "owner lookup failed",
				slog.String("key", key),
				logger.Error(err))
		}
		return ""
	}

	name, _ := v.(string)
	return name
}

// byAnyID tries the primary key, the legacy id attribute and the account id.
func (r *OwnerNames) byAnyID(ctx context.Context, id string) (*users.User, error) {
	lookups := []func(context.Context, string) (*users.User, error){
		r.users.GetByID,
		r.users.FindByIDField,
		r.users.GetByAccountID,
	}
	var errs []error
	for _, find := range lookups {
		u, err := find(ctx, id)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, users.ErrUserNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, users.ErrUserNotFound
}

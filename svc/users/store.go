package users

import "context"

// Store persists users. Lookups return ErrUserNotFound when nothing matches.
type Store interface {
	// GetByID fetches by primary key.
	GetByID(ctx context.Context, id string) (*User, error)
	// FindByIDField matches the legacy "id" attribute some imported documents carry.
	FindByIDField(ctx context.Context, id string) (*User, error)
	GetByAccountID(ctx context.Context, accountID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Create inserts u. Returns ErrUserExists on a duplicate email or account id.
	Create(ctx context.Context, u *User) error
}

package user

import "context"

// Repository port for persisting users. Implementations return ErrNotFound
// for missing rows and wrap connectivity failures with ErrStoreUnavailable.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id ID) (*User, error)
}

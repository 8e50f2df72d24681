package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/rumera-ai/rumera/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (id, name, email, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5);
`
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, createdAt)
	if isDuplicate(err) {
		return domain.ErrAlreadyExists
	}
	return storeErr(err, domain.ErrStoreUnavailable)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM users WHERE email=$1 LIMIT 1;`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM users WHERE id=$1 LIMIT 1;`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err, domain.ErrStoreUnavailable)
	}
	return &u, nil
}

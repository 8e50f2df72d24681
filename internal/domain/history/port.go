package history

import "context"

// Repository port for persisting and querying analysis history
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	Paginate(ctx context.Context, userID string, page, pageSize int) ([]*Entry, error)
	// Delete returns ErrNotFound when nothing matched.
	Delete(ctx context.Context, userID string, id EntryID) error
}

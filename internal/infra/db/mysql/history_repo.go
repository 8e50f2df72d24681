package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/rumera-ai/rumera/internal/domain/history"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save inserts a history entry
func (r *HistoryRepository) Save(ctx context.Context, e *domain.Entry) error {
	const q = `
INSERT INTO analysis_history
  (id, user_id, modality, trust_score, classification, summary, archive_url, result_json, created_at)
VALUES (?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  trust_score=VALUES(trust_score), classification=VALUES(classification), result_json=VALUES(result_json);
`
	// result_json column requires valid JSON; use empty object
	result := e.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.UserID, e.Modality, e.TrustScore, stringOrDash(e.Classification),
		e.Summary, e.ArchiveURL, result, createdAt,
	)
	return storeErr(err, domain.ErrStoreUnavailable)
}

// Paginate returns a page of entries ordered by created_at desc
func (r *HistoryRepository) Paginate(ctx context.Context, userID string, page, pageSize int) ([]*domain.Entry, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, user_id, modality, trust_score, classification, summary, archive_url, result_json, created_at
FROM analysis_history
WHERE user_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, userID, pageSize, offset)
	if err != nil {
		return nil, storeErr(err, domain.ErrStoreUnavailable)
	}
	defer rows.Close()

	out := make([]*domain.Entry, 0, pageSize)
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Modality, &e.TrustScore, &e.Classification,
			&e.Summary, &e.ArchiveURL, &e.Result, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Delete removes one entry owned by userID.
func (r *HistoryRepository) Delete(ctx context.Context, userID string, id domain.EntryID) error {
	const q = `DELETE FROM analysis_history WHERE id=? AND user_id=?;`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return storeErr(err, domain.ErrStoreUnavailable)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

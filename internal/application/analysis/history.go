package analysis

import (
	"context"

	domain "github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/history"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 10000
)

// History lists a user's analyses, newest first.
func (s *Service) History(ctx context.Context, userID string, page, pageSize int) (*history.Page, error) {
	if s.Records == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	page = min(max(page, 1), maxPage)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)

	entries, err := s.Records.Paginate(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*history.Entry{}
	}
	return &history.Page{Data: entries, Page: page, PageSize: pageSize}, nil
}

// DeleteHistory removes one of the user's entries. Returns history.ErrNotFound
// when the entry does not exist or belongs to someone else.
func (s *Service) DeleteHistory(ctx context.Context, userID string, id history.EntryID) error {
	if s.Records == nil {
		return domain.ErrHistoryUnavailable
	}
	if id == "" {
		return invalid("History id is required")
	}
	return s.Records.Delete(ctx, userID, id)
}

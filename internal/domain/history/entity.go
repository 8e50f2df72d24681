package history

import "time"

// EntryID identifier type
type EntryID string

// Entry is one analysis recorded for an authenticated user.
type Entry struct {
	ID             EntryID   `json:"id"`
	UserID         string    `json:"user_id"`
	Modality       string    `json:"type"`
	TrustScore     int       `json:"trust_score"`
	Classification string    `json:"classification"`
	Summary        string    `json:"summary,omitempty"`
	ArchiveURL     string    `json:"archive_url,omitempty"`
	Result         string    `json:"result"` // JSON string of the full result
	CreatedAt      time.Time `json:"created_at"`
}

// Page represents a paginated response with data and metadata
type Page struct {
	Data     []*Entry `json:"data"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

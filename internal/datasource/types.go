package datasource

import "time"

// Status values for a data source.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DataSource is an operator-curated external URL whose content is
// fetched into the assistant's context.
type DataSource struct {
	ID          int64      `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Preview     string     `json:"preview"`
	Status      string     `json:"status"`
	LastFetched *time.Time `json:"last_fetched,omitempty"`
	FetchCount  int        `json:"fetch_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

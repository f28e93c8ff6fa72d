// Package activity keeps the change history of vehicle variants. Entries
// are derived from domain events, classified by what changed and queried
// per variant or by summary text.
package activity

import "time"

// QueryOptions controls filtering and pagination for variant history queries.
type QueryOptions struct {
	Since      *time.Time // inclusive
	Until      *time.Time // inclusive
	Categories []string   // any overlap matches
	MinWeight  string     // minimum weight threshold (default: "info")
	Limit      int        // max results (default: 50, max: 500)
	Cursor     string     // cursor returned by a previous page
}

// SearchOptions controls filtering for summary search.
type SearchOptions struct {
	EventType string
	Actor     string
	Since     *time.Time
	Limit     int // max results (default: 20)
}

const (
	defaultQueryLimit  = 50
	maxQueryLimit      = 500
	defaultSearchLimit = 20
)

func (o QueryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > maxQueryLimit {
		return defaultQueryLimit
	}
	return o.Limit
}

func (o SearchOptions) limit() int {
	if o.Limit <= 0 {
		return defaultSearchLimit
	}
	return o.Limit
}

// DefaultQueryOptions returns QueryOptions covering the last six months.
func DefaultQueryOptions() QueryOptions {
	sixMonthsAgo := time.Now().AddDate(0, -6, 0)
	return QueryOptions{
		Since:     &sixMonthsAgo,
		MinWeight: WeightInfo,
		Limit:     defaultQueryLimit,
	}
}

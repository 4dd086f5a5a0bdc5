package db

import "time"

type Bookmark struct {
	ID      string
	Owner   string
	URL     string
	Title   string
	Favicon string
	Summary string
	Tags    []string
	// Position is the manual-ordering key within one owner's collection.
	Position int64
	// CreatedAt is stored in the DB as RFC3339 text.
	CreatedAt string
	// EnrichedAt is "" while (re-)enrichment is pending.
	EnrichedAt   string
	EnrichMethod string
}

// CreatedTime parses CreatedAt; the zero time is returned for rows with
// unparseable timestamps.
func (b Bookmark) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339, b.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/seckatie/linkhoard/internal/core"
)

// SearchQuery describes a search over one owner's collection.
type SearchQuery struct {
	// Query is matched case-insensitively against title, summary and url.
	Query string
	// Tags filters to bookmarks having any of the given tags.
	Tags []string
	// From/To bound creation time when non-zero.
	From time.Time
	To   time.Time
	// Fuzzy matches each whitespace-separated query term independently
	// instead of the query as a whole.
	Fuzzy bool
	// Rank orders results by descending relevance score instead of position.
	Rank bool
}

// SearchBookmarks fetches the owner's collection and filters it in-process:
// substring matching over title/summary/url (per-term in fuzzy mode), an
// any-of tag filter, and an optional date range. With Rank set, results are
// ordered by descending relevance; otherwise they keep position order.
func (db *DB) SearchBookmarks(owner string, q SearchQuery) ([]Bookmark, error) {
	rows, err := db.db.Query(
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE owner = ? ORDER BY position ASC, created_at ASC",
		owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	all, err := scanBookmarks(rows)
	if err != nil {
		return nil, err
	}

	matched := make([]Bookmark, 0, len(all))
	for _, b := range all {
		if !matchesQuery(b, q) {
			continue
		}
		matched = append(matched, b)
	}

	if !q.Rank || strings.TrimSpace(q.Query) == "" {
		return matched, nil
	}

	candidates := make([]core.Scorable, len(matched))
	for i, b := range matched {
		candidates[i] = core.Scorable{
			Title:     b.Title,
			URL:       b.URL,
			Summary:   b.Summary,
			Tags:      b.Tags,
			CreatedAt: b.CreatedTime(),
		}
	}

	// Rank with the same terms the filter used, so every filtered bookmark
	// carries a positive score and ranking stays a pure reordering.
	ranked := make([]Bookmark, 0, len(matched))
	for _, idx := range core.RankIndices(queryTerms(q), candidates) {
		ranked = append(ranked, matched[idx])
	}
	return ranked, nil
}

// queryTerms returns the match terms for a query: the whole query string,
// or its whitespace-separated terms in fuzzy mode.
func queryTerms(q SearchQuery) []string {
	query := strings.ToLower(strings.TrimSpace(q.Query))
	if q.Fuzzy {
		return strings.Fields(query)
	}
	return []string{query}
}

func matchesQuery(b Bookmark, q SearchQuery) bool {
	if strings.TrimSpace(q.Query) != "" {
		haystack := strings.ToLower(b.Title + " " + b.Summary + " " + b.URL)
		for _, term := range queryTerms(q) {
			if !strings.Contains(haystack, term) {
				return false
			}
		}
	}

	if len(q.Tags) > 0 {
		if !hasAnyTag(b.Tags, q.Tags) {
			return false
		}
	}

	if !q.From.IsZero() || !q.To.IsZero() {
		created := b.CreatedTime()
		if !q.From.IsZero() && created.Before(q.From) {
			return false
		}
		if !q.To.IsZero() && created.After(q.To) {
			return false
		}
	}

	return true
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		w = strings.ToLower(strings.TrimSpace(w))
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

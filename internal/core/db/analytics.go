package db

import (
	"fmt"
	"sort"
	"time"

	"github.com/seckatie/linkhoard/internal/core"
)

// Analytics aggregates an owner's bookmarking activity.
type Analytics struct {
	Total       int             `json:"total"`
	Last7Days   int             `json:"last_7_days"`
	Last30Days  int             `json:"last_30_days"`
	TopTags     []NameCount     `json:"top_tags"`
	TopDomains  []NameCount     `json:"top_domains"`
	DailyCounts []DailyActivity `json:"daily_counts"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyActivity is one day of the 30-day activity histogram. Days with no
// activity are present with a zero count.
type DailyActivity struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

const topN = 5

// GetAnalytics computes activity aggregates over the owner's collection:
// window counts, top tags, top domains (hostname with "www." stripped) and a
// zero-filled 30-day daily histogram.
func (db *DB) GetAnalytics(owner string) (Analytics, error) {
	rows, err := db.db.Query(
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE owner = ?", owner)
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks, err := scanBookmarks(rows)
	if err != nil {
		return Analytics{}, err
	}

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	tagCounts := make(map[string]int)
	domainCounts := make(map[string]int)
	dayCounts := make(map[string]int)

	a := Analytics{Total: len(bookmarks)}
	for _, b := range bookmarks {
		created := b.CreatedTime()
		if created.After(weekAgo) {
			a.Last7Days++
		}
		if created.After(monthAgo) {
			a.Last30Days++
			dayCounts[created.Format("2006-01-02")]++
		}
		for _, tag := range b.Tags {
			tagCounts[tag]++
		}
		if host := core.Hostname(b.URL); host != "" {
			domainCounts[host]++
		}
	}

	a.TopTags = topCounts(tagCounts, topN)
	a.TopDomains = topCounts(domainCounts, topN)

	// Zero-filled histogram, oldest day first, today included.
	a.DailyCounts = make([]DailyActivity, 0, 30)
	for i := 29; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		a.DailyCounts = append(a.DailyCounts, DailyActivity{
			Date:  day,
			Count: dayCounts[day],
		})
	}

	return a, nil
}

// topCounts returns the n highest counts, count ties broken alphabetically
// so output is deterministic.
func topCounts(counts map[string]int, n int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

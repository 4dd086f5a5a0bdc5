package core

import (
	"sort"
	"strings"
	"time"
)

// Scoring weights: matches in more prominent fields score higher, and each
// matching tag contributes on its own.
const (
	ScoreTitleMatch   = 10.0
	ScoreTagMatch     = 7.0
	ScoreURLMatch     = 5.0
	ScoreSummaryMatch = 3.0

	// Recency bonus decays linearly to zero over the first RecencyWindowDays
	// days since creation.
	RecencyBonusMax   = 5.0
	RecencyWindowDays = 50
)

// Scorable is the view of a bookmark the ranker needs.
type Scorable struct {
	Title     string
	URL       string
	Summary   string
	Tags      []string
	CreatedAt time.Time
}

// ScoreBookmark computes the weighted relevance of a bookmark against a
// query. A zero score means no match.
func ScoreBookmark(query string, b Scorable) float64 {
	score := matchScore(query, b)
	if score > 0 {
		score += recencyBonus(b.CreatedAt, time.Now())
	}
	return score
}

// matchScore is the field-weight portion of the score for one query term,
// without the recency bonus.
func matchScore(query string, b Scorable) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0.0
	}

	var score float64
	if strings.Contains(strings.ToLower(b.Title), query) {
		score += ScoreTitleMatch
	}
	for _, tag := range b.Tags {
		if strings.Contains(tag, query) {
			score += ScoreTagMatch
		}
	}
	if strings.Contains(strings.ToLower(b.URL), query) {
		score += ScoreURLMatch
	}
	if strings.Contains(strings.ToLower(b.Summary), query) {
		score += ScoreSummaryMatch
	}
	return score
}

// recencyBonus rewards recently created bookmarks, decaying linearly over
// the recency window and floored at zero.
func recencyBonus(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	if age < 0 {
		age = 0
	}
	days := age.Hours() / 24
	if days >= RecencyWindowDays {
		return 0.0
	}
	return RecencyBonusMax * (1.0 - days/RecencyWindowDays)
}

// RankIndices scores every candidate against the query terms and returns
// the indices of matching candidates ordered by descending score, score
// ties broken by recency. Term scores accumulate, so a candidate matching
// several terms outranks one matching a single term; the recency bonus is
// applied once per candidate.
func RankIndices(terms []string, candidates []Scorable) []int {
	type ranked struct {
		index int
		score float64
	}

	now := time.Now()
	matches := make([]ranked, 0, len(candidates))
	for i, c := range candidates {
		var score float64
		for _, term := range terms {
			score += matchScore(term, c)
		}
		if score == 0.0 {
			continue
		}
		score += recencyBonus(c.CreatedAt, now)
		matches = append(matches, ranked{index: i, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return candidates[matches[i].index].CreatedAt.After(candidates[matches[j].index].CreatedAt)
	})

	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.index
	}
	return out
}

package core

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanSummary(t *testing.T) {
	t.Run("collapses whitespace runs", func(t *testing.T) {
		got := cleanSummary("a  summary\twith\n\nodd   spacing")
		assert.Equal(t, "a summary with odd spacing", got)
	})

	t.Run("strips boilerplate lead-in", func(t *testing.T) {
		got := cleanSummary("This is a guide to writing Go services.")
		assert.Equal(t, "A guide to writing Go services.", got)
	})

	t.Run("removes filler phrases", func(t *testing.T) {
		got := cleanSummary("A deep dive into database indexes. Read more about our plans. Click here for details.")
		assert.NotContains(t, strings.ToLower(got), "read more")
		assert.NotContains(t, strings.ToLower(got), "click here")
	})

	t.Run("truncates with ellipsis at word boundary", func(t *testing.T) {
		long := strings.Repeat("some words about a long article ", 40)
		got := cleanSummary(long)
		assert.LessOrEqual(t, len(got), MaxSummaryLength+3)
		assert.True(t, strings.HasSuffix(got, "..."), "got %q", got)
		assert.False(t, strings.Contains(got, "  "))
	})

	t.Run("truncates multi-byte text on a rune boundary", func(t *testing.T) {
		// No spaces, so the word-boundary backoff cannot repair a bad cut.
		got := cleanSummary(strings.Repeat("é", MaxSummaryLength))
		assert.True(t, utf8.ValidString(got), "tail bytes %q", got[len(got)-4:])
		assert.LessOrEqual(t, len(got), MaxSummaryLength+3)
	})

	t.Run("short text passes through unchanged", func(t *testing.T) {
		text := "A short, complete description."
		assert.Equal(t, text, cleanSummary(text))
	})
}

func TestStripMarkdown(t *testing.T) {
	input := "# A Heading\n\nSome prose with a [link](https://example.com) in it.\n\n![logo](https://example.com/logo.png)\n\n- a list item\n"
	got := stripMarkdown(input)

	assert.Contains(t, got, "A Heading")
	assert.Contains(t, got, "Some prose with a link in it.")
	assert.Contains(t, got, "a list item")
	assert.NotContains(t, got, "](")
	assert.NotContains(t, got, "logo.png")
}

func TestSummaryStrategyOrder(t *testing.T) {
	t.Run("llm strategy absent without api key", func(t *testing.T) {
		e := NewEnricher(EnricherOptions{}, nil)
		names := strategyNames(e)
		assert.Equal(t, []string{"reader", "meta-description", "html-text"}, names)
	})

	t.Run("llm strategy first with api key", func(t *testing.T) {
		e := NewEnricher(EnricherOptions{OpenAIAPIKey: "test-key", OpenAIBaseURL: "http://localhost:9"}, nil)
		names := strategyNames(e)
		assert.Equal(t, []string{"llm", "reader", "meta-description", "html-text"}, names)
	})
}

func strategyNames(e *Enricher) []string {
	var names []string
	for _, s := range e.summaryStrategies() {
		names = append(names, s.name)
	}
	return names
}

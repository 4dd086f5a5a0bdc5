package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"plain domain", "https://example.com", "Example"},
		{"www stripped", "https://www.example.com", "Example"},
		{"unknown site", "https://unknownsite.example/page1", "Unknownsite - Page1"},
		{"path segment humanized", "https://example.com/foo-bar", "Example - Foo Bar"},
		{"underscores humanized", "https://example.com/my_saved_page", "Example - My Saved Page"},
		{"extension stripped", "https://example.com/docs/intro.html", "Example - Intro"},
		{"long segment omitted", "https://example.com/a-very-long-path-segment-that-would-never-fit-in-a-title", "Example"},
		{"trailing slash ignored", "https://example.com/foo/", "Example - Foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FallbackTitle(tt.url))
		})
	}
}

func TestFallbackTitleTotal(t *testing.T) {
	// Must never panic and always return something displayable.
	inputs := []string{"", ":", "not a url", "://missing-scheme", "https://", "%%%", "http://%41"}
	for _, input := range inputs {
		assert.NotEmpty(t, FallbackTitle(input), "input %q", input)
	}
}

func TestFallbackSummary(t *testing.T) {
	t.Run("known domain gets context sentence", func(t *testing.T) {
		summary := FallbackSummary("https://github.com/seckatie/linkhoard")
		assert.Contains(t, summary, "GitHub")
		assert.Contains(t, summary, "github.com")
	})

	t.Run("unknown domain gets generic sentence with domain", func(t *testing.T) {
		summary := FallbackSummary("https://unknownsite.example/page1")
		assert.Contains(t, summary, "unknownsite.example")
	})

	t.Run("www stripped from domain", func(t *testing.T) {
		summary := FallbackSummary("https://www.wikipedia.org/wiki/Go")
		assert.Contains(t, summary, "wikipedia.org")
		assert.NotContains(t, summary, "www.wikipedia.org")
	})
}

func TestFallbackSummaryTotal(t *testing.T) {
	inputs := []string{"", ":", "not a url", "%%%"}
	for _, input := range inputs {
		assert.NotEmpty(t, FallbackSummary(input), "input %q", input)
	}
}

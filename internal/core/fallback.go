package core

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// The fallback synthesizer is the guaranteed terminal case of both
// extraction pipelines: a pure function of the URL string with no network
// access. It must be total, so URL-parse failures map to fixed generic
// strings instead of errors.

const (
	genericFallbackTitle   = "Saved Link"
	genericFallbackSummary = "This bookmark contains content saved for reference."

	// maxFallbackTitleLength gates appending the path-segment suffix.
	maxFallbackTitleLength = 50
)

// domainContexts maps well-known domains (substring match against the
// hostname) to a one-sentence description used in fallback summaries.
var domainContexts = []struct {
	domain  string
	context string
}{
	{"github.com", "A code repository or developer resource on GitHub"},
	{"gitlab.com", "A code repository or developer resource on GitLab"},
	{"stackoverflow.com", "A programming question and answer discussion on Stack Overflow"},
	{"youtube.com", "A video on YouTube"},
	{"vimeo.com", "A video on Vimeo"},
	{"wikipedia.org", "An encyclopedia article on Wikipedia"},
	{"medium.com", "An article published on Medium"},
	{"dev.to", "A developer article on DEV Community"},
	{"reddit.com", "A discussion thread on Reddit"},
	{"news.ycombinator.com", "A discussion on Hacker News"},
	{"twitter.com", "A post on Twitter"},
	{"x.com", "A post on X"},
	{"linkedin.com", "A post or profile on LinkedIn"},
	{"nytimes.com", "A news article from The New York Times"},
	{"bbc.", "A news article from the BBC"},
	{"arxiv.org", "A research paper on arXiv"},
	{"docs.google.com", "A document on Google Docs"},
	{"npmjs.com", "A package on the npm registry"},
	{"pypi.org", "A package on the Python Package Index"},
	{"pkg.go.dev", "Go package documentation"},
}

// FallbackTitle derives a display title purely from the URL structure:
// the hostname with "www." stripped and its first label title-cased, plus a
// humanized final path segment when that keeps the title short.
func FallbackTitle(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Hostname() == "" {
		return genericFallbackTitle
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return genericFallbackTitle
	}
	title := titleCaseWord(label)

	if segment := lastPathSegment(u.Path); segment != "" {
		suffix := " - " + humanizeSegment(segment)
		if len(title)+len(suffix) <= maxFallbackTitleLength {
			title += suffix
		}
	}

	return title
}

// FallbackSummary derives a summary from the hostname and the static
// domain-context table.
func FallbackSummary(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Hostname() == "" {
		return genericFallbackSummary
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, entry := range domainContexts {
		if strings.Contains(host, entry.domain) {
			return fmt.Sprintf("%s. This bookmark contains saved content from %s for future reference.", entry.context, host)
		}
	}

	return fmt.Sprintf("This bookmark contains saved content from %s for future reference.", host)
}

// lastPathSegment returns the final non-empty path segment with its file
// extension stripped, or "".
func lastPathSegment(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	segment := path.Base(p)
	if ext := path.Ext(segment); ext != "" {
		segment = strings.TrimSuffix(segment, ext)
	}
	return segment
}

// humanizeSegment turns "foo-bar_baz" into "Foo Bar Baz".
func humanizeSegment(segment string) string {
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	words := strings.Fields(segment)
	for i, w := range words {
		words[i] = titleCaseWord(w)
	}
	return strings.Join(words, " ")
}

func titleCaseWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

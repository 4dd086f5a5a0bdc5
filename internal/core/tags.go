package core

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9 _-]*$`)

// NormalizeTags cleans a raw tag list for storage: each tag is trimmed and
// lower-cased; empty, over-length, or pattern-violating entries are dropped;
// duplicates are removed preserving first-seen order; the result is capped
// at MaxTagCount. No raw user tag text is ever persisted unmodified.
//
// The function is pure and idempotent: NormalizeTags(NormalizeTags(x))
// equals NormalizeTags(x).
func NormalizeTags(raw []string) []string {
	clean := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || len(tag) > MaxTagLength {
			continue
		}
		if !tagPattern.MatchString(tag) {
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		clean = append(clean, tag)
		if len(clean) == MaxTagCount {
			break
		}
	}

	return clean
}

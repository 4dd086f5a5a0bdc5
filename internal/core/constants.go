package core

import "time"

// Acceptance thresholds for extraction strategies
const (
	MinTitleLength   = 4
	MinSummaryLength = 51
)

// Display caps
const (
	MaxTitleLength   = 200
	MaxSummaryLength = 400
)

// Tag limits
const (
	MaxTagLength = 30
	MaxTagCount  = 15
)

// Timeout and retry defaults for outbound fetches
const (
	DefaultFetchTimeout    = 10 * time.Second
	DefaultRenderedTimeout = 35 * time.Second
	RetryAttempts          = 3
	RetryInitialDelay      = 500 * time.Millisecond
	RetryMaxDelay          = 5 * time.Second
)

// Resource limits
const (
	MaxFetchBodySize = 1 * 1024 * 1024 // 1MB
)

// Cache defaults
const (
	DefaultCacheTTL = 5 * time.Minute
)

// HTTP client configuration
const (
	UserAgent = "Mozilla/5.0 (compatible; linkhoard/1.0)"
)

// FaviconServiceURL is the template used when no favicon can be scraped.
const FaviconServiceURL = "https://www.google.com/s2/favicons?domain=%s&sz=64"

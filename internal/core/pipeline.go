package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// Enrichment is the display-ready result of enriching one URL.
type Enrichment struct {
	Title   string
	Favicon string
	Summary string
	// Method names the metadata strategy that produced the title/favicon.
	Method string
}

// EnricherOptions configures the enrichment pipeline.
type EnricherOptions struct {
	// PreviewAPIURL is the base URL of the link-preview metadata service.
	PreviewAPIURL string
	// ReaderAPIURL is the base URL of the page-to-text reader service.
	ReaderAPIURL string
	// FetchTimeout bounds each strategy attempt. If <= 0, a default is used.
	FetchTimeout time.Duration
	// CacheTTL bounds result memoization. If <= 0, a default is used.
	CacheTTL time.Duration
	// RenderedExtraction enables the browser-based metadata strategy.
	RenderedExtraction bool
	// ChromePath optionally overrides the Chrome/Chromium executable path.
	ChromePath string
	// OpenAIAPIKey enables the LLM summary strategy when non-empty.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// Enricher runs the bookmark enrichment pipeline: given a URL it produces a
// title, favicon URL and summary, consulting the result cache first and
// falling back to offline synthesis when every network strategy fails.
type Enricher struct {
	client        *retryablehttp.Client
	cache         *Cache
	log           *zap.Logger
	previewAPIURL string
	readerAPIURL  string
	fetchTimeout  time.Duration
	rendered      bool
	chromePath    string
	llm           *openai.Client
	llmModel      string
}

// NewEnricher builds an Enricher. The cache is owned by the Enricher and
// lives as long as it does.
func NewEnricher(opts EnricherOptions, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	e := &Enricher{
		client:        newRetryableClient(log),
		cache:         NewCache(opts.CacheTTL),
		log:           log,
		previewAPIURL: opts.PreviewAPIURL,
		readerAPIURL:  opts.ReaderAPIURL,
		fetchTimeout:  opts.FetchTimeout,
		rendered:      opts.RenderedExtraction,
		chromePath:    opts.ChromePath,
		llmModel:      opts.OpenAIModel,
	}

	if opts.OpenAIAPIKey != "" {
		e.llm = openai.NewClient(
			option.WithAPIKey(opts.OpenAIAPIKey),
			option.WithBaseURL(opts.OpenAIBaseURL),
			option.WithHTTPClient(e.client.StandardClient()),
		)
	}

	return e
}

// Enrich produces the enrichment for one URL. Metadata extraction and
// summarization run concurrently and settle independently: a failure in one
// never cancels the other, and both terminate in the offline fallback, so
// Enrich always returns a usable result.
func (e *Enricher) Enrich(ctx context.Context, urlStr string) Enrichment {
	var (
		wg      sync.WaitGroup
		meta    Metadata
		summary string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		meta = e.extractWithCache(ctx, urlStr)
	}()
	go func() {
		defer wg.Done()
		summary = e.summarizeWithCache(ctx, urlStr)
	}()
	wg.Wait()

	e.log.Info("enriched url",
		zap.String("url", urlStr),
		zap.String("method", meta.Method),
		zap.Int("summary_len", len(summary)))

	return Enrichment{
		Title:   meta.Title,
		Favicon: meta.Favicon,
		Summary: summary,
		Method:  meta.Method,
	}
}

func (e *Enricher) extractWithCache(ctx context.Context, urlStr string) Metadata {
	key := "metadata:" + urlStr
	if cached, ok := e.cache.Get(key); ok {
		var meta Metadata
		if err := json.Unmarshal([]byte(cached), &meta); err == nil {
			e.log.Debug("metadata cache hit", zap.String("url", urlStr))
			return meta
		}
	}

	meta := e.ExtractMetadata(ctx, urlStr)
	if encoded, err := json.Marshal(meta); err == nil {
		e.cache.Put(key, string(encoded))
	}
	return meta
}

func (e *Enricher) summarizeWithCache(ctx context.Context, urlStr string) string {
	key := "summary:" + urlStr
	if cached, ok := e.cache.Get(key); ok {
		e.log.Debug("summary cache hit", zap.String("url", urlStr))
		return cached
	}

	summary := e.Summarize(ctx, urlStr)
	e.cache.Put(key, summary)
	return summary
}

package core

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Metadata is the display-ready result of metadata extraction.
type Metadata struct {
	Title   string `json:"title"`
	Favicon string `json:"favicon"`
	// Method names the strategy that produced the result, or "fallback".
	Method string `json:"method"`
}

// metadataStrategy is one concrete way of obtaining a page title and
// favicon. Strategies are tried in order; the first acceptable result wins.
type metadataStrategy struct {
	name string
	run  func(ctx context.Context, urlStr string) (Metadata, error)
}

// ExtractMetadata tries each metadata strategy in order and returns the
// first result whose title passes the acceptance threshold. It never fails
// past its own boundary: when every strategy is exhausted it returns the
// fallback synthesizer's result tagged with method "fallback", because
// bookmark creation must not block on extraction failure.
func (e *Enricher) ExtractMetadata(ctx context.Context, urlStr string) Metadata {
	for _, strategy := range e.metadataStrategies() {
		attemptCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
		meta, err := strategy.run(attemptCtx, urlStr)
		cancel()
		if err != nil {
			e.log.Debug("metadata strategy failed",
				zap.String("strategy", strategy.name),
				zap.String("url", urlStr),
				zap.Error(err))
			continue
		}
		if len(meta.Title) < MinTitleLength {
			e.log.Debug("metadata strategy returned too-short title",
				zap.String("strategy", strategy.name),
				zap.String("url", urlStr))
			continue
		}
		meta.Method = strategy.name
		if meta.Favicon == "" {
			meta.Favicon = faviconServiceURL(urlStr)
		}
		return meta
	}

	return Metadata{
		Title:   FallbackTitle(urlStr),
		Favicon: faviconServiceURL(urlStr),
		Method:  "fallback",
	}
}

func (e *Enricher) metadataStrategies() []metadataStrategy {
	strategies := []metadataStrategy{
		{name: "preview-api", run: e.previewAPIMetadata},
		{name: "html-meta", run: e.htmlMetadata},
	}
	if e.rendered {
		strategies = append(strategies, metadataStrategy{name: "rendered", run: e.renderedMetadata})
	}
	return strategies
}

// previewAPIMetadata queries the link-preview service, which returns JSON of
// the shape {"data": {"title": ..., "logo": {"url": ...}, "image": {"url": ...}}}.
func (e *Enricher) previewAPIMetadata(ctx context.Context, urlStr string) (Metadata, error) {
	endpoint := fmt.Sprintf("%s/?url=%s", strings.TrimRight(e.previewAPIURL, "/"), url.QueryEscape(urlStr))
	body, err := fetchBody(ctx, e.client, endpoint)
	if err != nil {
		return Metadata{}, err
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return Metadata{}, fmt.Errorf("preview response missing data field")
	}

	favicon := data.Get("logo.url").String()
	if favicon == "" {
		favicon = data.Get("image.url").String()
	}

	return Metadata{
		Title:   cleanTitle(data.Get("title").String()),
		Favicon: favicon,
	}, nil
}

// htmlMetadata fetches the page directly and scrapes its head: Open Graph
// and Twitter card titles take precedence over the <title> element, and the
// favicon comes from the first usable link[rel~=icon].
func (e *Enricher) htmlMetadata(ctx context.Context, urlStr string) (Metadata, error) {
	body, err := fetchBody(ctx, e.client, urlStr)
	if err != nil {
		return Metadata{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return metadataFromDocument(doc, urlStr), nil
}

// renderedMetadata loads the page in a real browser so JS-heavy pages have a
// chance to fully render, then scrapes the final HTML the same way as the
// direct strategy. Only enabled via the rendered-extraction option.
func (e *Enricher) renderedMetadata(ctx context.Context, urlStr string) (Metadata, error) {
	allocatorOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocatorOpts = append(allocatorOpts,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Headless,
	)
	if e.chromePath != "" {
		allocatorOpts = append(allocatorOpts, chromedp.ExecPath(e.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, DefaultRenderedTimeout)
	defer cancelRun()

	// Wait for network idle so late-rendering pages settle before capture.
	waitForNetworkIdle := func(ctx context.Context) error {
		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}

		ch := make(chan struct{})
		chromedp.ListenTarget(ctx, func(ev interface{}) {
			if e, ok := ev.(*page.EventLifecycleEvent); ok {
				if e.Name == "networkIdle" {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
			}
		})

		if err := chromedp.Navigate(urlStr).Do(ctx); err != nil {
			return err
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	var html string
	actions := []chromedp.Action{
		chromedp.ActionFunc(waitForNetworkIdle),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return Metadata{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}

	return metadataFromDocument(doc, urlStr), nil
}

// metadataFromDocument scrapes title and favicon out of a parsed document.
func metadataFromDocument(doc *goquery.Document, baseURL string) Metadata {
	title := ""
	for _, selector := range []string{
		`meta[property="og:title"]`,
		`meta[name="twitter:title"]`,
	} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
			title = content
			break
		}
	}
	if title == "" {
		title = doc.Find("title").First().Text()
	}

	favicon := ""
	base, err := url.Parse(baseURL)
	if err == nil {
		doc.Find(`link[rel~="icon"], link[rel="shortcut icon"], link[rel="apple-touch-icon"]`).
			EachWithBreak(func(_ int, s *goquery.Selection) bool {
				href, ok := s.Attr("href")
				if !ok {
					return true
				}
				if resolved := resolveURL(base, href); resolved != "" {
					favicon = resolved
					return false
				}
				return true
			})
	}

	return Metadata{Title: cleanTitle(title), Favicon: favicon}
}

// resolveURL resolves a possibly-relative reference against a base URL.
// Non-fetchable schemes (data:, javascript:) and empty refs resolve to "".
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "javascript:") {
		return ""
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(refURL)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// cleanTitle strips entities and collapses whitespace, capping the result
// for display.
func cleanTitle(title string) string {
	title = html.UnescapeString(title)
	title = strings.Join(strings.Fields(title), " ")
	if len(title) > MaxTitleLength {
		title = strings.TrimSpace(truncateUTF8(title, MaxTitleLength))
	}
	return title
}

// truncateUTF8 cuts s to at most n bytes, backing off to the previous rune
// boundary so the result is always valid UTF-8.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// faviconServiceURL builds the favicon-service URL for a bookmark URL's
// domain, used whenever no favicon can be scraped.
func faviconServiceURL(urlStr string) string {
	host := Hostname(urlStr)
	if host == "" {
		return ""
	}
	return fmt.Sprintf(FaviconServiceURL, host)
}

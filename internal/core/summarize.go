package core

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

// summaryStrategy is one concrete way of obtaining summary text for a page.
type summaryStrategy struct {
	name string
	run  func(ctx context.Context, urlStr string) (string, error)
}

// Summarize tries each summary strategy in order and returns the first
// post-processed text that passes the acceptance threshold. Like metadata
// extraction it never fails outward: on total failure the fallback
// synthesizer's summary is returned.
func (e *Enricher) Summarize(ctx context.Context, urlStr string) string {
	for _, strategy := range e.summaryStrategies() {
		attemptCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
		text, err := strategy.run(attemptCtx, urlStr)
		cancel()
		if err != nil {
			e.log.Debug("summary strategy failed",
				zap.String("strategy", strategy.name),
				zap.String("url", urlStr),
				zap.Error(err))
			continue
		}
		if len(text) < MinSummaryLength {
			continue
		}
		return cleanSummary(text)
	}

	return FallbackSummary(urlStr)
}

func (e *Enricher) summaryStrategies() []summaryStrategy {
	strategies := []summaryStrategy{}
	if e.llm != nil {
		strategies = append(strategies, summaryStrategy{name: "llm", run: e.llmSummary})
	}
	strategies = append(strategies,
		summaryStrategy{name: "reader", run: e.readerSummary},
		summaryStrategy{name: "meta-description", run: e.metaDescriptionSummary},
		summaryStrategy{name: "html-text", run: e.htmlTextSummary},
	)
	return strategies
}

// llmSummary asks the configured model for a short summary of the page text
// obtained from the reader service. Active only when an API key is set.
func (e *Enricher) llmSummary(ctx context.Context, urlStr string) (string, error) {
	text, err := e.fetchReaderText(ctx, urlStr)
	if err != nil {
		return "", err
	}
	if len(text) > 6000 {
		text = truncateUTF8(text, 6000)
	}

	prompt := fmt.Sprintf("Summarize the following page content in two or three plain sentences. Do not mention that it is a web page or that you are summarizing.\n\nURL: %s\n\nContent:\n%s", urlStr, text)

	chatCompletion, err := e.llm.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You summarize saved web pages for a bookmarking tool. Reply with the summary only."),
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(e.llmModel),
		Temperature: openai.F(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return strings.TrimSpace(chatCompletion.Choices[0].Message.Content), nil
}

// readerSummary takes the leading prose of the reader service's plain-text
// rendition of the page.
func (e *Enricher) readerSummary(ctx context.Context, urlStr string) (string, error) {
	return e.fetchReaderText(ctx, urlStr)
}

// fetchReaderText fetches "{reader}/{url}", which returns a plain-text or
// markdown rendition of the page content.
func (e *Enricher) fetchReaderText(ctx context.Context, urlStr string) (string, error) {
	endpoint := strings.TrimRight(e.readerAPIURL, "/") + "/" + urlStr
	body, err := fetchBody(ctx, e.client, endpoint)
	if err != nil {
		return "", err
	}

	text := stripMarkdown(string(body))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("reader returned no text")
	}
	return text, nil
}

// metaDescriptionSummary scrapes the page's description meta tags.
func (e *Enricher) metaDescriptionSummary(ctx context.Context, urlStr string) (string, error) {
	doc, err := e.fetchDocument(ctx, urlStr)
	if err != nil {
		return "", err
	}

	for _, selector := range []string{
		`meta[name="description"]`,
		`meta[property="og:description"]`,
		`meta[name="twitter:description"]`,
	} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if text := strings.TrimSpace(html.UnescapeString(content)); text != "" {
				return text, nil
			}
		}
	}

	return "", fmt.Errorf("no description meta tag")
}

// htmlTextSummary scrapes paragraph text nodes until enough prose has
// accumulated. Script-heavy or navigation-only pages produce little and fall
// through to the fallback synthesizer.
func (e *Enricher) htmlTextSummary(ctx context.Context, urlStr string) (string, error) {
	doc, err := e.fetchDocument(ctx, urlStr)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, header, footer").Remove()

	var parts []string
	total := 0
	doc.Find("article p, main p, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) < 40 {
			return true // skip captions, buttons and the like
		}
		parts = append(parts, text)
		total += len(text)
		return total < MaxSummaryLength*2
	})

	if len(parts) == 0 {
		return "", fmt.Errorf("no usable text nodes")
	}
	return strings.Join(parts, " "), nil
}

func (e *Enricher) fetchDocument(ctx context.Context, urlStr string) (*goquery.Document, error) {
	body, err := fetchBody(ctx, e.client, urlStr)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// stripMarkdown removes the markdown syntax the reader service emits,
// keeping link text and dropping image references and headings markers.
func stripMarkdown(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#>*- ")
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString(" ")
	}

	out := b.String()
	out = markdownImagePattern.ReplaceAllString(out, "")
	out = markdownLinkPattern.ReplaceAllString(out, "$1")
	return out
}

// boilerplateLeadIns are stripped from the front of accepted summary text.
var boilerplateLeadIns = []string{
	"this is ",
	"this article ",
	"this page ",
	"welcome to ",
	"the following ",
}

// fillerPhrases are removed wherever they appear.
var fillerPhrases = []string{
	"click here",
	"read more",
	"learn more",
	"sign up now",
	"subscribe to our newsletter",
}

// cleanSummary post-processes accepted summary text for readability:
// whitespace runs collapse to single spaces, boilerplate lead-ins and filler
// phrases are stripped, and the result is truncated to MaxSummaryLength with
// a trailing ellipsis when cut off mid-sentence.
func cleanSummary(text string) string {
	text = strings.Join(strings.Fields(text), " ")

	lower := strings.ToLower(text)
	for _, leadIn := range boilerplateLeadIns {
		if strings.HasPrefix(lower, leadIn) {
			text = text[len(leadIn):]
			text = titleCaseWord(text)
			break
		}
	}

	for _, filler := range fillerPhrases {
		for {
			idx := strings.Index(strings.ToLower(text), filler)
			if idx < 0 {
				break
			}
			text = strings.TrimSpace(text[:idx] + text[idx+len(filler):])
		}
	}
	text = strings.Join(strings.Fields(text), " ")

	if len(text) > MaxSummaryLength {
		text = strings.TrimSpace(truncateUTF8(text, MaxSummaryLength))
		// Cut back to the last word boundary, then add an ellipsis unless we
		// happen to land on a sentence end.
		if idx := strings.LastIndex(text, " "); idx > 0 {
			text = text[:idx]
		}
		text = strings.TrimRight(text, ",;:-")
		if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
			text += "..."
		}
	}

	return text
}

var (
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	markdownLinkPattern  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

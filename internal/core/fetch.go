package core

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// retryLogger adapts zap to the retryablehttp logger interface.
type retryLogger struct {
	log *zap.SugaredLogger
}

func (l *retryLogger) Printf(format string, v ...any) {
	l.log.Debugf(format, v...)
}

// newRetryableClient builds the shared HTTP client used by all network
// strategies. Each strategy attempt gets RetryAttempts tries in total, with
// the wait between tries growing by a 1.5x factor from RetryInitialDelay.
// Rate-limit responses (429) are retried in addition to the default policy
// of transport errors and 5xx.
func newRetryableClient(log *zap.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = RetryAttempts - 1
	client.RetryWaitMin = RetryInitialDelay
	client.RetryWaitMax = RetryMaxDelay
	client.Logger = &retryLogger{log: log.Sugar()}

	client.Backoff = func(min, max time.Duration, attemptNum int, _ *http.Response) time.Duration {
		wait := time.Duration(float64(min) * math.Pow(1.5, float64(attemptNum)))
		if wait > max {
			wait = max
		}
		return wait
	}

	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		retry, err := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		if retry || err != nil {
			return retry, err
		}
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return true, nil
		}
		return false, nil
	}

	return client
}

// fetchBody GETs a URL and returns at most MaxFetchBodySize bytes of the
// response body. The context carries the per-attempt timeout; callers must
// have set it already.
func fetchBody(ctx context.Context, client *retryablehttp.Client, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	return body, nil
}

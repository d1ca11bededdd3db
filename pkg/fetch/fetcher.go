package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"webcrawler-mcp/pkg/config"
	"webcrawler-mcp/pkg/utils"
)

// Fetcher performs HTTP requests with retry on transient failures. Retries
// apply to network errors, 5xx responses, and 429; other client errors are
// returned immediately. The dispatch layer above never retries, so this is
// the only place a URL is attempted more than once.
type Fetcher struct {
	client *http.Client
	cfg    *config.AppConfig
	log    *logrus.Logger
}

// NewFetcher creates a Fetcher around the shared HTTP client
func NewFetcher(client *http.Client, cfg *config.AppConfig, log *logrus.Logger) *Fetcher {
	return &Fetcher{client: client, cfg: cfg, log: log}
}

// Do executes the request with exponential backoff and jitter between
// attempts. On 2xx the response is returned with an open body the caller
// must close. On non-retryable statuses the response is returned alongside a
// categorized error (body still open, caller closes). Context cancellation
// aborts both attempts and backoff sleeps.
func (f *Fetcher) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	var resp *http.Response

	reqLog := f.log.WithField("url", req.URL.String())

	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoffDelay(attempt)
			reqLog.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).Warn("Retrying request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				if lastErr != nil {
					return nil, fmt.Errorf("context cancelled (%v) during retry backoff after: %w", ctx.Err(), lastErr)
				}
				return nil, ctx.Err()
			}
		}

		resp, lastErr = f.client.Do(req.WithContext(ctx))

		if lastErr != nil {
			drainAndClose(resp)
			if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
				return nil, lastErr
			}
			reqLog.WithField("attempt", attempt).Warnf("Network error: %v", lastErr)
			continue
		}

		switch code := resp.StatusCode; {
		case code >= 200 && code < 300:
			return resp, nil

		case code >= 500:
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, code, resp.Status)
			reqLog.WithFields(logrus.Fields{"status": code, "attempt": attempt}).Warn("Server error, retrying")
			drainAndClose(resp)
			continue

		case code == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, code, resp.Status)
			reqLog.WithField("attempt", attempt).Warn("Rate limited (429), retrying")
			drainAndClose(resp)
			continue

		case code >= 400 && code < 500:
			// Not retryable. Caller may inspect the response; caller closes.
			return resp, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, code, resp.Status)

		default:
			return resp, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, code, resp.Status)
		}
	}

	reqLog.Errorf("All %d attempts failed: %v", f.cfg.MaxRetries+1, lastErr)
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
	}
	return nil, utils.ErrRetryFailed
}

// backoffDelay computes initial * 2^(attempt-1) capped at the configured
// maximum, with +/-10% jitter to desynchronize concurrent retries
func (f *Fetcher) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(float64(f.cfg.InitialRetryDelay) * math.Pow(2, float64(attempt-1)))
	if delay <= 0 || delay > f.cfg.MaxRetryDelay {
		delay = f.cfg.MaxRetryDelay
	}
	if delay >= 5 {
		jitter := time.Duration(rand.Int63n(int64(delay)/5)) - delay/10
		delay += jitter
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

func drainAndClose(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

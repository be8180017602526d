package shortener

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// maxRedirects bounds the redirect chain followed by the reachability check.
const maxRedirects = 15

// Checker verifies that a target URL responds before it is shortened.
type Checker interface {
	Check(ctx context.Context, rawURL string) error
}

// HTTPChecker performs a single GET against the target URL. Any response,
// whatever its status, counts as reachable; only transport failures and
// exceeding the redirect cap fail the check. The check is never retried.
type HTTPChecker struct {
	client *http.Client
}

// NewHTTPChecker creates a reachability checker with the given total
// timeout.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}

				return nil
			},
		},
	}
}

func (c *HTTPChecker) Check(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}

	return resp.Body.Close()
}

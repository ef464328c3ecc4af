package extractor

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HTTPProbe checks that a local model server answers GET url with 200.
// Results are cached for ttl so the chain does not probe on every request.
type HTTPProbe struct {
	url    string
	ttl    time.Duration
	client *http.Client

	mu        sync.Mutex
	checkedAt time.Time
	lastErr   error
}

// NewHTTPProbe creates a probe for url.
func NewHTTPProbe(url string, ttl time.Duration) *HTTPProbe {
	return &HTTPProbe{
		url:    url,
		ttl:    ttl,
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

// Check returns nil when the server is reachable, or an ErrUnavailable wrap.
func (p *HTTPProbe) Check(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.checkedAt.IsZero() && time.Since(p.checkedAt) < p.ttl {
		return p.lastErr
	}
	p.lastErr = p.do(ctx)
	p.checkedAt = time.Now()
	return p.lastErr
}

func (p *HTTPProbe) do(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Unavailable("bad probe url %s: %v", p.url, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Unavailable("server not reachable at %s", p.url)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Unavailable("probe %s returned status %d", p.url, resp.StatusCode)
	}
	return nil
}

package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"voxform/internal/domain"
	"voxform/internal/logger"
	"voxform/internal/observe"
	"voxform/internal/port"
)

const (
	defaultAttemptTimeout = 35 * time.Second
	probeTimeout          = 5 * time.Second
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

type entry struct {
	ext     port.FieldExtractor
	circuit *circuitState
}

// Chain runs providers strictly in order until one succeeds.
type Chain struct {
	kind    domain.InputKind
	entries []*entry
	timeout time.Duration
	metrics *observe.Metrics
}

// ChainOption customises a Chain.
type ChainOption func(*Chain)

// WithAttemptTimeout bounds every single provider attempt.
func WithAttemptTimeout(d time.Duration) ChainOption {
	return func(c *Chain) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(m *observe.Metrics) ChainOption {
	return func(c *Chain) { c.metrics = m }
}

// NewChain creates a Chain for one input kind from an ordered provider list.
func NewChain(kind domain.InputKind, extractors []port.FieldExtractor, opts ...ChainOption) *Chain {
	c := &Chain{kind: kind, timeout: defaultAttemptTimeout}
	for _, e := range extractors {
		c.entries = append(c.entries, &entry{ext: e, circuit: &circuitState{}})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chain) Kind() domain.InputKind { return c.kind }

// Names returns provider identifiers in chain order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.ext.Name()
	}
	return names
}

// Only narrows the chain to a single configured provider. The narrowed chain
// shares circuit state with c.
func (c *Chain) Only(name string) (*Chain, error) {
	for _, e := range c.entries {
		if strings.EqualFold(e.ext.Name(), name) {
			return &Chain{kind: c.kind, entries: []*entry{e}, timeout: c.timeout, metrics: c.metrics}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (configured: %s)", domain.ErrUnknownBackend, name, strings.Join(c.Names(), ","))
}

// ChainResult is the outcome of one chain run.
type ChainResult struct {
	Fields     domain.ExtractedFields
	Provider   string
	ModelUsed  string
	Transcript string
	Attempts   []domain.ProviderResult
	// Exhausted is set when every provider was skipped or failed. A run in
	// which some provider declined with ErrNoMatch is an empty success.
	Exhausted bool
}

// Diagnostic explains every attempt. It is empty on success.
func (r *ChainResult) Diagnostic() string {
	if !r.Exhausted {
		return ""
	}
	if len(r.Attempts) == 0 {
		return "no extraction providers configured"
	}
	parts := make([]string, len(r.Attempts))
	for i, a := range r.Attempts {
		if a.Detail != "" {
			parts[i] = fmt.Sprintf("%s: %s (%s)", a.Provider, a.Status, a.Detail)
		} else {
			parts[i] = fmt.Sprintf("%s: %s", a.Provider, a.Status)
		}
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

// Run tries each provider in order. The first success wins regardless of how many
// fields it found. Skipped providers are never invoked.
func (c *Chain) Run(ctx context.Context, input port.ExtractInput) *ChainResult {
	start := time.Now()
	res := &ChainResult{}
	chain := string(c.kind)
	declined := ""

	for _, e := range c.entries {
		name := e.ext.Name()

		if reason, skip := c.skipReason(ctx, e); skip {
			logger.Debug(ctx, "extractor.Chain: skipping provider", "provider", name, "chain", chain, "reason", reason)
			c.metrics.RecordSkip(ctx, name, chain, skipLabel(reason))
			res.Attempts = append(res.Attempts, domain.ProviderResult{
				Provider: name, Status: domain.AttemptSkipped, Detail: reason,
			})
			continue
		}

		attemptStart := time.Now()
		actx, cancel := context.WithTimeout(ctx, c.timeout)
		out, err := e.ext.Extract(actx, input)
		cancel()
		elapsed := time.Since(attemptStart)

		attempt := domain.ProviderResult{Provider: name, DurationMS: elapsed.Milliseconds()}

		if err == nil {
			fields := domain.ExtractedFields{}
			if out != nil && out.Fields != nil {
				fields = out.Fields
			}
			attempt.Status = domain.AttemptSuccess
			attempt.Fields = fields
			res.Attempts = append(res.Attempts, attempt)
			c.metrics.RecordAttempt(ctx, name, chain, string(domain.AttemptSuccess), elapsed)
			c.metrics.RecordExtraction(ctx, chain, true, time.Since(start))

			res.Fields = fields
			res.Provider = name
			if out != nil {
				res.Transcript = out.Transcript
				res.ModelUsed = out.ModelUsed
			}
			logger.Debug(ctx, "extractor.Chain: provider succeeded",
				"provider", name, "chain", chain, "fields", len(fields), "elapsed_ms", elapsed.Milliseconds())
			return res
		}

		if errors.Is(err, ErrNoMatch) {
			attempt.Status = domain.AttemptNoMatch
			if declined == "" {
				declined = name
			}
			logger.Debug(ctx, "extractor.Chain: provider found nothing", "provider", name, "chain", chain)
		} else {
			attempt.Status = domain.AttemptError
			attempt.Detail = Truncate(err.Error(), 300)
			logger.Warn(ctx, "extractor.Chain: provider failed", "provider", name, "chain", chain, "error", err)

			var rlErr *RateLimitError
			if errors.As(err, &rlErr) {
				e.circuit.open(time.Now().Add(rlErr.RetryAfter))
			}
		}
		c.metrics.RecordAttempt(ctx, name, chain, string(attempt.Status), elapsed)
		res.Attempts = append(res.Attempts, attempt)
	}

	res.Fields = domain.ExtractedFields{}
	if declined != "" {
		res.Provider = declined
		c.metrics.RecordExtraction(ctx, chain, true, time.Since(start))
		return res
	}
	res.Exhausted = true
	c.metrics.RecordExtraction(ctx, chain, false, time.Since(start))
	return res
}

func (c *Chain) skipReason(ctx context.Context, e *entry) (string, bool) {
	if !e.ext.Supports(c.kind) {
		return fmt.Sprintf("does not accept %s input", c.kind), true
	}
	if resetAt, open := e.circuit.isOpenWithReset(time.Now()); open {
		return fmt.Sprintf("rate limited until %s", resetAt.Format(time.RFC3339)), true
	}
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := e.ext.Available(pctx); err != nil {
		return err.Error(), true
	}
	return "", false
}

func skipLabel(reason string) string {
	switch {
	case strings.HasPrefix(reason, "does not accept"):
		return "unsupported"
	case strings.HasPrefix(reason, "rate limited"):
		return "circuit_open"
	default:
		return "unavailable"
	}
}

// Status probes every provider concurrently without running an extraction.
func (c *Chain) Status(ctx context.Context) []domain.ProviderStatus {
	out := make([]domain.ProviderStatus, len(c.entries))
	var g errgroup.Group
	for i, e := range c.entries {
		g.Go(func() error {
			st := domain.ProviderStatus{Name: e.ext.Name(), Chain: c.kind}
			if resetAt, open := e.circuit.isOpenWithReset(time.Now()); open {
				st.OpenUntil = resetAt
			}
			reason, skip := c.skipReason(ctx, e)
			st.Available = !skip
			st.Reason = reason
			out[i] = st
			return nil
		})
	}
	_ = g.Wait()
	return out
}

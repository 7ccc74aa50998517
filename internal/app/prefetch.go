package app

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"notables-quiz-service/internal/domain"
)

// ImageFetcher resolves one portrait URI. Infrastructure provides the
// HTTP implementation; tests inject fakes.
type ImageFetcher interface {
	FetchImage(ctx context.Context, uri string) error
}

// Prefetcher resolves the portraits of a question set before it is
// shown. A failed load is a degraded-but-playable state, so Prefetch
// completes whether individual fetches succeed or not. Already-resolved
// URIs are remembered for the session and never refetched.
type Prefetcher struct {
	fetcher ImageFetcher
	sf      singleflight.Group

	mu       sync.RWMutex
	resolved map[string]struct{}
}

func NewPrefetcher(fetcher ImageFetcher) *Prefetcher {
	return &Prefetcher{
		fetcher:  fetcher,
		resolved: make(map[string]struct{}),
	}
}

// Prefetch resolves every option image of qs that is not already known.
// It blocks until all attempts complete; it never fails.
func (p *Prefetcher) Prefetch(ctx context.Context, qs domain.QuestionSet) {
	g, ctx := errgroup.WithContext(ctx)
	for _, option := range qs.Options {
		uri := option.Image
		if uri == "" || p.Resolved(uri) {
			continue
		}
		g.Go(func() error {
			// Collapse concurrent fetches of the same URI across queue slots.
			_, _, _ = p.sf.Do(uri, func() (interface{}, error) {
				_ = p.fetcher.FetchImage(ctx, uri)
				return nil, nil
			})
			p.markResolved(uri)
			return nil
		})
	}
	_ = g.Wait()
}

// Resolved reports whether a URI has already been attempted this session.
func (p *Prefetcher) Resolved(uri string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.resolved[uri]
	return ok
}

// markResolved is append-only and idempotent, so completions arriving
// after a queue reset are safe no-ops.
func (p *Prefetcher) markResolved(uri string) {
	p.mu.Lock()
	p.resolved[uri] = struct{}{}
	p.mu.Unlock()
}

// HTTPImageFetcher resolves portraits with plain GET requests.
type HTTPImageFetcher struct {
	client *http.Client
}

func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	return &HTTPImageFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPImageFetcher) FetchImage(ctx context.Context, uri string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the bytes themselves are
	// only needed by the browser cache downstream.
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}

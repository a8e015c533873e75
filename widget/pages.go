package widget

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPageTTL bounds how long an unclaimed page token stays valid.
const DefaultPageTTL = 10 * time.Minute

// ErrUnknownPage is returned for tokens that were never issued to the
// visitor, were released, or have expired.
var ErrUnknownPage = errors.New("widget: unknown page")

// Pages keeps one ready future per rendered page. The chat SDK loads in
// every page separately, so readiness of one page says nothing about the
// next. A token is only valid for the visitor it was issued to.
type Pages struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	pages map[pageKey]*pageEntry
}

type pageKey struct {
	visitor string
	page    string
}

type pageEntry struct {
	ready   *Ready
	expires time.Time
}

// NewPages returns an empty registry. Zero ttl uses DefaultPageTTL and a nil
// clock uses time.Now.
func NewPages(ttl time.Duration, now func() time.Time) *Pages {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Pages{
		ttl:   ttl,
		now:   now,
		pages: make(map[pageKey]*pageEntry),
	}
}

// Issue registers a fresh unresolved page for visitor and returns its token.
func (p *Pages) Issue(visitor string) string {
	token := uuid.NewString()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.prune()
	p.pages[pageKey{visitor: visitor, page: token}] = &pageEntry{
		ready:   NewReady(),
		expires: p.now().Add(p.ttl),
	}
	return token
}

// Lookup returns the ready future of page when it belongs to visitor.
func (p *Pages) Lookup(visitor, page string) (*Ready, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prune()
	entry, ok := p.pages[pageKey{visitor: visitor, page: page}]
	if !ok || page == "" {
		return nil, ErrUnknownPage
	}
	return entry.ready, nil
}

// Release forgets page. Unknown pages are ignored.
func (p *Pages) Release(visitor, page string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pages, pageKey{visitor: visitor, page: page})
}

// Len reports how many pages are tracked.
func (p *Pages) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

// prune drops expired entries. Callers hold mu.
func (p *Pages) prune() {
	now := p.now()
	for k, e := range p.pages {
		if !now.Before(e.expires) {
			delete(p.pages, k)
		}
	}
}

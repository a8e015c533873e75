// Package widget coordinates the third party chat widget with the pages that
// feed it visitor details.
package widget

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyResolved is returned when Resolve is called a second time.
var ErrAlreadyResolved = errors.New("widget: ready already resolved")

// Info is what the host page reports once the widget SDK has loaded.
type Info struct {
	Provider string `json:"provider"`
	Version  string `json:"version,omitempty"`
}

// Ready is a one shot future resolved by the host page.
type Ready struct {
	once sync.Once
	done chan struct{}
	info Info
}

// NewReady returns an unresolved future.
func NewReady() *Ready {
	return &Ready{done: make(chan struct{})}
}

// Resolve marks the widget ready. Only the first call has effect.
func (r *Ready) Resolve(info Info) error {
	resolved := false
	r.once.Do(func() {
		r.info = info
		close(r.done)
		resolved = true
	})
	if !resolved {
		return ErrAlreadyResolved
	}
	return nil
}

// Done is closed once the widget is ready.
func (r *Ready) Done() <-chan struct{} {
	return r.done
}

// Resolved reports whether Resolve has been called.
func (r *Ready) Resolved() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the widget is ready or ctx ends.
func (r *Ready) Wait(ctx context.Context) (Info, error) {
	select {
	case <-r.done:
		return r.info, nil
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
}

package widget

import (
	"context"
	"fmt"
	"strings"
)

// Visitor is the identity pushed into the widget.
type Visitor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Empty reports whether there is nothing to push.
func (v Visitor) Empty() bool {
	return strings.TrimSpace(v.ID) == ""
}

// Pusher delivers visitor details to the widget once it can accept them.
type Pusher interface {
	PushVisitor(ctx context.Context, v Visitor) error
}

// PusherFunc adapts a function to Pusher.
type PusherFunc func(ctx context.Context, v Visitor) error

func (f PusherFunc) PushVisitor(ctx context.Context, v Visitor) error {
	return f(ctx, v)
}

// Sync waits for ready and then pushes the visitor exactly once.
func Sync(ctx context.Context, ready *Ready, pusher Pusher, v Visitor) error {
	if v.Empty() {
		return nil
	}
	if _, err := ready.Wait(ctx); err != nil {
		return fmt.Errorf("widget not ready: %w", err)
	}
	return pusher.PushVisitor(ctx, v)
}

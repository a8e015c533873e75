package portal

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityFlowMethodChosen ActivityEventType = "flow.method.chosen"
	ActivityFlowOTPRequested ActivityEventType = "flow.otp.requested"
	ActivityFlowOTPFailed    ActivityEventType = "flow.otp.failed"
	ActivityLoginSuccess     ActivityEventType = "auth.login.success"
	ActivityLoginFailure     ActivityEventType = "auth.login.failure"
	ActivityRegistered       ActivityEventType = "auth.register.success"
	ActivitySignedOut        ActivityEventType = "auth.signed_out"
	ActivityArticleCreated   ActivityEventType = "article.created"
	ActivityArticleToggled   ActivityEventType = "article.published.toggled"
	ActivityArticleDeleted   ActivityEventType = "article.deleted"
)

// ActivityEvent captures audit friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Method     Method
	FromStep   Step
	ToStep     Step
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// recordActivity stamps and publishes event. Sink failures are only logged.
func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, now func() time.Time, event ActivityEvent) {
	if sink == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now()
	}
	if err := sink.Record(ctx, event); err != nil && logger != nil {
		logger.Warn("activity sink rejected %s: %v", event.EventType, err)
	}
}

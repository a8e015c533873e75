package activitymap_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/activitymap"
)

func TestNormalizeFlowEvent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	event := portal.ActivityEvent{
		EventType:  portal.ActivityFlowOTPRequested,
		Method:     portal.MethodPhoneOTP,
		FromStep:   portal.StepInput,
		ToStep:     portal.StepOTP,
		Metadata:   map[string]any{"resend": true},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	if out.ActorID != "anonymous" {
		t.Fatalf("expected actor_id anonymous, got %q", out.ActorID)
	}
	if out.Verb != string(portal.ActivityFlowOTPRequested) {
		t.Fatalf("expected verb %q, got %q", portal.ActivityFlowOTPRequested, out.Verb)
	}
	if out.Channel != "flow" {
		t.Fatalf("expected channel flow, got %q", out.Channel)
	}
	if out.ObjectType != "identity" {
		t.Fatalf("expected object_type identity, got %q", out.ObjectType)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}
	if out.Metadata[activitymap.MetadataKeyMethod] != string(portal.MethodPhoneOTP) {
		t.Fatalf("expected method metadata, got %#v", out.Metadata)
	}
	if out.Metadata[activitymap.MetadataKeyToStep] != string(portal.StepOTP) {
		t.Fatalf("expected to_step otp, got %#v", out.Metadata[activitymap.MetadataKeyToStep])
	}
	if len(event.Metadata) != 1 {
		t.Fatalf("expected source metadata to remain unchanged, got %+v", event.Metadata)
	}
}

func TestNormalizeArticleEvent(t *testing.T) {
	t.Parallel()

	out := activitymap.Normalize(portal.ActivityEvent{
		EventType: portal.ActivityArticleDeleted,
		UserID:    "admin-1",
		Metadata:  map[string]any{"article_id": "a-42"},
	})

	if out.ActorID != "admin-1" {
		t.Fatalf("expected actor admin-1, got %q", out.ActorID)
	}
	if out.ObjectType != "article" || out.ObjectID != "a-42" {
		t.Fatalf("expected article a-42, got %s %q", out.ObjectType, out.ObjectID)
	}
	if out.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be set when input is zero")
	}
}

func TestNormalizeOptionOverrides(t *testing.T) {
	t.Parallel()

	out := activitymap.Normalize(
		portal.ActivityEvent{EventType: portal.ActivitySignedOut},
		activitymap.WithDefaultChannel("security"),
		activitymap.WithDefaultObjectType("account"),
		activitymap.WithActorFallback("job"),
		activitymap.WithObjectIDResolver(func(portal.ActivityEvent) string { return " acct-1 " }),
	)

	if out.Channel != "security" || out.ObjectType != "account" {
		t.Fatalf("expected overrides, got %+v", out)
	}
	if out.ActorID != "job" {
		t.Fatalf("expected actor job, got %q", out.ActorID)
	}
	if out.ObjectID != "acct-1" {
		t.Fatalf("expected object acct-1, got %q", out.ObjectID)
	}
}

type lineLogger struct{ lines []string }

func (l *lineLogger) Debug(string, ...any) {}
func (l *lineLogger) Warn(string, ...any)  {}
func (l *lineLogger) Error(string, ...any) {}
func (l *lineLogger) Info(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestLogSinkWritesJSON(t *testing.T) {
	logger := &lineLogger{}
	sink := activitymap.LogSink(logger)

	err := sink.Record(context.Background(), portal.ActivityEvent{
		EventType: portal.ActivityLoginSuccess,
		UserID:    "user-7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logger.lines) != 1 {
		t.Fatalf("expected one line, got %d", len(logger.lines))
	}
	if !strings.Contains(logger.lines[0], `"verb":"auth.login.success"`) {
		t.Fatalf("expected verb in line, got %s", logger.lines[0])
	}
}

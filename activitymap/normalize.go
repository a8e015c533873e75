package activitymap

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/goliatone/go-portal"
)

const (
	// MetadataKeyMethod stores the auth method of a flow event.
	MetadataKeyMethod = "method"
	// MetadataKeyFromStep stores the step the flow left.
	MetadataKeyFromStep = "from_step"
	// MetadataKeyToStep stores the step the flow entered.
	MetadataKeyToStep = "to_step"
	// MetadataKeyArticleID is read to resolve article object ids.
	MetadataKeyArticleID = "article_id"
)

const (
	defaultObjectType = "identity"
	defaultActorID    = "anonymous"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel          string
	objectType       string
	actorFallback    string
	objectIDResolver func(portal.ActivityEvent) string
}

// Normalize converts a portal.ActivityEvent into a generic normalized shape.
// The channel defaults to the event type prefix: flow, auth or article.
func Normalize(event portal.ActivityEvent, opts ...Option) Normalized {
	var options normalizeOptions
	options.actorFallback = defaultActorID
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	verb := string(event.EventType)
	channel := options.channel
	if channel == "" {
		channel = channelOf(verb)
	}

	objectType := options.objectType
	if objectType == "" {
		objectType = defaultObjectType
		if channel == "article" {
			objectType = "article"
		}
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    firstNonEmpty(strings.TrimSpace(event.UserID), options.actorFallback),
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   resolveObjectID(event, options.objectIDResolver),
		Channel:    channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel fixes the channel instead of deriving it.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType fixes the object type.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithObjectIDResolver overrides object id extraction.
func WithObjectIDResolver(resolver func(portal.ActivityEvent) string) Option {
	return func(opts *normalizeOptions) {
		opts.objectIDResolver = resolver
	}
}

// WithActorFallback sets the actor id used for anonymous events.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if actorID = strings.TrimSpace(actorID); actorID != "" {
			opts.actorFallback = actorID
		}
	}
}

// LogSink returns an ActivitySink writing each normalized event as one JSON
// line at info level.
func LogSink(logger portal.Logger, opts ...Option) portal.ActivitySink {
	if logger == nil {
		logger = portal.DefaultLogger()
	}
	return portal.ActivitySinkFunc(func(_ context.Context, event portal.ActivityEvent) error {
		raw, err := json.Marshal(Normalize(event, opts...))
		if err != nil {
			return err
		}
		logger.Info("activity %s", raw)
		return nil
	})
}

func channelOf(verb string) string {
	if i := strings.IndexByte(verb, '.'); i > 0 {
		return verb[:i]
	}
	return "portal"
}

func resolveObjectID(event portal.ActivityEvent, resolver func(portal.ActivityEvent) string) string {
	if resolver != nil {
		return strings.TrimSpace(resolver(event))
	}
	if id, ok := event.Metadata[MetadataKeyArticleID].(string); ok {
		return strings.TrimSpace(id)
	}
	return strings.TrimSpace(event.UserID)
}

func normalizeMetadata(event portal.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	set := func(key, value string) {
		if value == "" {
			return
		}
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[key]; !exists {
			metadata[key] = value
		}
	}

	set(MetadataKeyMethod, string(event.Method))
	set(MetadataKeyFromStep, string(event.FromStep))
	set(MetadataKeyToStep, string(event.ToStep))

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

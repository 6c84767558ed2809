package events

import "context"

// ChannelPipeline carries everything the send pipeline reports.
const ChannelPipeline = "events:pipeline"

// Event types
const (
	EventScheduleFired  = "schedule_fired"
	EventScheduleFailed = "schedule_failed"
	EventQueueProcessed = "queue_processed"
	EventEmailOpened    = "email_opened"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(Event)) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }

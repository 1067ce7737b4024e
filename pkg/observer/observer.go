package observer

import (
	"feed-notifier/models/entities"
	"time"
)

type EventType int

const (
	FeedUpdatedEvent    EventType = 1
	FeedFailedEvent     EventType = 2
	BatchCompletedEvent EventType = 3
	RecordsPurgedEvent  EventType = 4
)

type Event struct {
	E             EventType
	FeedID        string
	Kind          entities.FeedKind
	Notifications int
	Duration      time.Duration
	Err           error
	// Number of feeds in a batch, or of purged records.
	Count int64
	// Tasks queued or running when the event was emitted.
	Pending int
}

func NewFeedEvent(feed entities.Feed, notifications int, duration time.Duration, err error) Event {
	event := Event{
		E:             FeedUpdatedEvent,
		FeedID:        feed.ID,
		Kind:          feed.Kind(),
		Notifications: notifications,
		Duration:      duration,
		Err:           err,
	}
	if err != nil {
		event.E = FeedFailedEvent
	}
	return event
}

type Observer interface {
	OnNotify(Event)
}

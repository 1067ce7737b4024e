package entities

import (
	"feed-notifier/models/constants"
	"strings"
	"time"
)

type FeedKind string

const (
	FeedKindUnknown FeedKind = ""
	FeedKindIntro   FeedKind = "intro"
	FeedKindSeries  FeedKind = "series"
	FeedKindChannel FeedKind = "channel"

	seriesIDPrefix  = "tt"
	channelIDPrefix = "yt_id"
)

// Feed is a subscribed source of notifications. Its kind is never stored, it is read from the id.
type Feed struct {
	ID           string    `gorm:"primaryKey"`
	SubscribedAt time.Time `gorm:"not null; default:current_timestamp"`
}

func (Feed) TableName() string {
	return "feed_sources"
}

func (feed Feed) Kind() FeedKind {
	return KindOf(feed.ID)
}

func KindOf(feedID string) FeedKind {
	switch {
	case feedID == constants.IntroFeedID:
		return FeedKindIntro
	case strings.HasPrefix(feedID, seriesIDPrefix):
		return FeedKindSeries
	case strings.HasPrefix(feedID, channelIDPrefix):
		return FeedKindChannel
	default:
		return FeedKindUnknown
	}
}

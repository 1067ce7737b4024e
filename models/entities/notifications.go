package entities

import "time"

// Notification is one time-stamped event derived from a feed.
// PublishedAt orders it in the feed index and decides when it leaves the retention window.
type Notification struct {
	ID          string
	FeedID      string
	PublishedAt time.Time
	Payload     NotificationPayload
}

// NotificationPayload is the JSON document stored for each notification and served to readers.
type NotificationPayload struct {
	ID         string     `json:"_id"`
	ItemID     string     `json:"item_id"`
	VideoID    string     `json:"video_id"`
	ItemType   string     `json:"item_type"`
	ItemName   string     `json:"item_name"`
	Name       string     `json:"name"`
	Title      string     `json:"title"`
	Background string     `json:"background,omitempty"`
	Type       string     `json:"type"`
	Season     *int       `json:"season,omitempty"`
	Episode    *int       `json:"episode,omitempty"`
	Published  time.Time  `json:"published"`
	Created    *time.Time `json:"created,omitempty"`
}

// FeedUpdate keeps the time of the last successful update of a feed.
type FeedUpdate struct {
	FeedID        string    `gorm:"primaryKey"`
	LastUpdatedAt time.Time `gorm:"not null"`
}

// FeedIndexEntry is one member of a feed's sorted index; Score is PublishedAt in unix milliseconds.
type FeedIndexEntry struct {
	FeedID         string `gorm:"primaryKey; index:idx_feed_score,priority:1"`
	NotificationID string `gorm:"primaryKey"`
	Score          int64  `gorm:"not null; index:idx_feed_score,priority:2"`
}

// NotificationRecord is a stored notification, invisible once ExpiresAt is reached.
type NotificationRecord struct {
	ID        string    `gorm:"primaryKey"`
	Payload   string    `gorm:"type:text; not null"`
	ExpiresAt time.Time `gorm:"not null; index"`
}

func ScoreOf(t time.Time) int64 {
	return t.UnixMilli()
}

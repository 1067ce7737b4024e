package notifications

import (
	"context"
	"errors"
	"feed-notifier/models/entities"
	"feed-notifier/utils/databases"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

var (
	ErrCommitFailed     = errors.New("notification batch commit failed")
	ErrRecordNotFound   = errors.New("notification record not found or expired")
	ErrFeedNeverUpdated = errors.New("feed has never been updated")
)

type Repository interface {
	Commit(ctx context.Context, batch *Batch) error
	GetFeedUpdatedAt(ctx context.Context, feedID string) (time.Time, error)
	GetIndex(ctx context.Context, feedID string) ([]entities.FeedIndexEntry, error)
	GetRecord(ctx context.Context, notificationID string) (entities.NotificationPayload, error)
	GetNotificationsSince(ctx context.Context, feedID string, since time.Time) ([]entities.NotificationPayload, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type Impl struct {
	db    databases.SqlConnection
	clock clockwork.Clock
}

// IndexEntry is a member to add to a feed index.
type IndexEntry struct {
	NotificationID string
	PublishedAt    time.Time
}

// Batch accumulates store mutations applied all-or-nothing by Commit.
type Batch struct {
	operations []operation
}

// operation runs inside the commit transaction; now is the commit time.
type operation func(tx *gorm.DB, now time.Time) error

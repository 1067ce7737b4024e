package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"feed-notifier/models/entities"
	"feed-notifier/utils/databases"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

func New(db databases.SqlConnection) *Impl {
	return NewWithClock(db, clockwork.NewRealClock())
}

func NewWithClock(db databases.SqlConnection, clock clockwork.Clock) *Impl {
	return &Impl{db: db, clock: clock}
}

// Commit applies every operation of the batch in a single transaction.
func (repo *Impl) Commit(ctx context.Context, batch *Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	now := repo.clock.Now().UTC()
	err := repo.db.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, apply := range batch.operations {
			if err := apply(tx, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	return nil
}

func (repo *Impl) GetFeedUpdatedAt(ctx context.Context, feedID string) (time.Time, error) {
	var update entities.FeedUpdate
	err := repo.db.GetDB().WithContext(ctx).
		Where("feed_id = ?", feedID).
		First(&update).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrFeedNeverUpdated
		}
		return time.Time{}, fmt.Errorf("failed to read feed update: %w", err)
	}

	return update.LastUpdatedAt, nil
}

// GetIndex returns the feed index ordered by ascending score.
func (repo *Impl) GetIndex(ctx context.Context, feedID string) ([]entities.FeedIndexEntry, error) {
	var entries []entities.FeedIndexEntry
	err := repo.db.GetDB().WithContext(ctx).
		Where("feed_id = ?", feedID).
		Order("score ASC").
		Order("notification_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read feed index: %w", err)
	}

	return entries, nil
}

func (repo *Impl) GetRecord(ctx context.Context, notificationID string) (entities.NotificationPayload, error) {
	var record entities.NotificationRecord
	err := repo.db.GetDB().WithContext(ctx).
		Where("id = ?", notificationID).
		Where("expires_at > ?", repo.clock.Now().UTC()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.NotificationPayload{}, ErrRecordNotFound
		}
		return entities.NotificationPayload{}, fmt.Errorf("failed to read notification: %w", err)
	}

	var payload entities.NotificationPayload
	if err := json.Unmarshal([]byte(record.Payload), &payload); err != nil {
		return entities.NotificationPayload{}, fmt.Errorf("failed to decode notification %s: %w", notificationID, err)
	}

	return payload, nil
}

// GetNotificationsSince returns the live notifications of a feed published after since, oldest first.
func (repo *Impl) GetNotificationsSince(ctx context.Context, feedID string, since time.Time) ([]entities.NotificationPayload, error) {
	var payloads []string
	err := repo.db.GetDB().WithContext(ctx).
		Model(&entities.FeedIndexEntry{}).
		Joins("JOIN notification_records ON notification_records.id = feed_index_entries.notification_id").
		Where("feed_index_entries.feed_id = ?", feedID).
		Where("feed_index_entries.score > ?", entities.ScoreOf(since)).
		Where("notification_records.expires_at > ?", repo.clock.Now().UTC()).
		Order("feed_index_entries.score ASC").
		Pluck("notification_records.payload", &payloads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	result := make([]entities.NotificationPayload, 0, len(payloads))
	for _, raw := range payloads {
		var payload entities.NotificationPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		result = append(result, payload)
	}

	return result, nil
}

// PurgeExpired deletes the records whose expiration time is reached.
func (repo *Impl) PurgeExpired(ctx context.Context) (int64, error) {
	res := repo.db.GetDB().WithContext(ctx).
		Where("expires_at <= ?", repo.clock.Now().UTC()).
		Delete(&entities.NotificationRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", res.Error)
	}

	return res.RowsAffected, nil
}

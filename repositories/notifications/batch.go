package notifications

import (
	"encoding/json"
	"feed-notifier/models/entities"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewBatch() *Batch {
	return &Batch{}
}

func (batch *Batch) Len() int {
	return len(batch.operations)
}

// SetFeedUpdated overwrites the last update time of a feed.
func (batch *Batch) SetFeedUpdated(feedID string, at time.Time) *Batch {
	update := entities.FeedUpdate{FeedID: feedID, LastUpdatedAt: at.UTC()}
	batch.operations = append(batch.operations, func(tx *gorm.DB, _ time.Time) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feed_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_updated_at"}),
		}).Create(&update).Error
		if err != nil {
			return fmt.Errorf("failed to set feed updated: %w", err)
		}
		return nil
	})
	return batch
}

// PruneIndex removes every entry of the feed index whose publication time is at or before cutoff.
func (batch *Batch) PruneIndex(feedID string, cutoff time.Time) *Batch {
	score := entities.ScoreOf(cutoff)
	batch.operations = append(batch.operations, func(tx *gorm.DB, _ time.Time) error {
		err := tx.Where("feed_id = ?", feedID).
			Where("score <= ?", score).
			Delete(&entities.FeedIndexEntry{}).Error
		if err != nil {
			return fmt.Errorf("failed to prune feed index: %w", err)
		}
		return nil
	})
	return batch
}

// IndexInsertMany adds entries to the feed index, replacing the score of ids already present.
func (batch *Batch) IndexInsertMany(feedID string, entries []IndexEntry) *Batch {
	if len(entries) == 0 {
		return batch
	}

	rows := make([]entities.FeedIndexEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, entities.FeedIndexEntry{
			FeedID:         feedID,
			NotificationID: entry.NotificationID,
			Score:          entities.ScoreOf(entry.PublishedAt),
		})
	}

	batch.operations = append(batch.operations, func(tx *gorm.DB, _ time.Time) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feed_id"}, {Name: "notification_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score"}),
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to insert feed index entries: %w", err)
		}
		return nil
	})
	return batch
}

// WriteRecordWithExpiry stores a notification that expires ttl after the commit.
func (batch *Batch) WriteRecordWithExpiry(notificationID string, payload any, ttl time.Duration) *Batch {
	batch.operations = append(batch.operations, func(tx *gorm.DB, now time.Time) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode notification %s: %w", notificationID, err)
		}

		record := entities.NotificationRecord{
			ID:        notificationID,
			Payload:   string(data),
			ExpiresAt: now.Add(ttl).UTC(),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at"}),
		}).Create(&record).Error
		if err != nil {
			return fmt.Errorf("failed to write notification %s: %w", notificationID, err)
		}
		return nil
	})
	return batch
}

package notifications_test

import (
	"context"
	"errors"
	"feed-notifier/models/entities"
	"feed-notifier/repositories/notifications"
	"feed-notifier/utils/databases"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	feedID    = "tt0944947"
	retention = 14 * 24 * time.Hour
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newRepository(t *testing.T) (*notifications.Impl, databases.SqlConnection, clockwork.FakeClock) {
	t.Helper()

	db := databases.New(filepath.Join(t.TempDir(), "notifications.db"))
	require.NoError(t, db.Run())
	t.Cleanup(db.Shutdown)
	require.NoError(t, db.Migrate(&entities.FeedUpdate{}, &entities.FeedIndexEntry{}, &entities.NotificationRecord{}))

	clock := clockwork.NewFakeClockAt(now)
	return notifications.NewWithClock(db, clock), db, clock
}

func payloadOf(id string, published time.Time) entities.NotificationPayload {
	return entities.NotificationPayload{ID: id, ItemID: feedID, Type: "notification", Published: published}
}

func seed(t *testing.T, repo *notifications.Impl, ids map[string]time.Time) {
	t.Helper()

	batch := notifications.NewBatch()
	entries := make([]notifications.IndexEntry, 0, len(ids))
	for id, published := range ids {
		entries = append(entries, notifications.IndexEntry{NotificationID: id, PublishedAt: published})
		batch.WriteRecordWithExpiry(id, payloadOf(id, published), retention)
	}
	batch.IndexInsertMany(feedID, entries).SetFeedUpdated(feedID, now.Add(-time.Hour))
	require.NoError(t, repo.Commit(context.Background(), batch))
}

func indexIDs(t *testing.T, repo *notifications.Impl) []string {
	t.Helper()

	entries, err := repo.GetIndex(context.Background(), feedID)
	require.NoError(t, err)
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.NotificationID)
	}
	return ids
}

func TestCommitAppliesEveryOperation(t *testing.T) {
	repo, _, _ := newRepository(t)
	ctx := context.Background()

	published := now.Add(-24 * time.Hour)
	batch := notifications.NewBatch().
		PruneIndex(feedID, now.Add(-retention)).
		IndexInsertMany(feedID, []notifications.IndexEntry{{NotificationID: "a", PublishedAt: published}}).
		WriteRecordWithExpiry("a", payloadOf("a", published), retention).
		SetFeedUpdated(feedID, now)
	assert.Equal(t, 4, batch.Len())
	require.NoError(t, repo.Commit(ctx, batch))

	updatedAt, err := repo.GetFeedUpdatedAt(ctx, feedID)
	require.NoError(t, err)
	assert.True(t, now.Equal(updatedAt))

	entries, err := repo.GetIndex(ctx, feedID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ScoreOf(published), entries[0].Score)

	payload, err := repo.GetRecord(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", payload.ID)
}

func TestCommitEmptyBatch(t *testing.T) {
	repo, _, _ := newRepository(t)

	assert.NoError(t, repo.Commit(context.Background(), notifications.NewBatch()))
	assert.NoError(t, repo.Commit(context.Background(), nil))
}

func TestGetFeedUpdatedAtNeverUpdated(t *testing.T) {
	repo, _, _ := newRepository(t)

	_, err := repo.GetFeedUpdatedAt(context.Background(), "tt404")
	assert.ErrorIs(t, err, notifications.ErrFeedNeverUpdated)
}

func TestPruneIndex(t *testing.T) {
	tests := []struct {
		name     string
		cutoff   time.Time
		expected []string
	}{
		{
			name:     "removes entries older than the cutoff",
			cutoff:   now.Add(-14 * 24 * time.Hour),
			expected: []string{"ten-days", "one-day"},
		},
		{
			name:     "cutoff is inclusive",
			cutoff:   now.Add(-10 * 24 * time.Hour),
			expected: []string{"one-day"},
		},
		{
			name:     "keeps everything newer than an old cutoff",
			cutoff:   now.Add(-60 * 24 * time.Hour),
			expected: []string{"twenty-days", "ten-days", "one-day"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, _ := newRepository(t)
			seed(t, repo, map[string]time.Time{
				"twenty-days": now.Add(-20 * 24 * time.Hour),
				"ten-days":    now.Add(-10 * 24 * time.Hour),
				"one-day":     now.Add(-24 * time.Hour),
			})

			require.NoError(t, repo.Commit(context.Background(), notifications.NewBatch().PruneIndex(feedID, tt.cutoff)))
			assert.Equal(t, tt.expected, indexIDs(t, repo))
		})
	}
}

func TestIndexInsertManyReplacesScore(t *testing.T) {
	repo, _, _ := newRepository(t)
	ctx := context.Background()
	seed(t, repo, map[string]time.Time{"a": now.Add(-48 * time.Hour)})

	moved := now.Add(-time.Hour)
	require.NoError(t, repo.Commit(ctx, notifications.NewBatch().
		IndexInsertMany(feedID, []notifications.IndexEntry{{NotificationID: "a", PublishedAt: moved}})))

	entries, err := repo.GetIndex(ctx, feedID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ScoreOf(moved), entries[0].Score)
}

func TestCommitFailureLeavesStateUntouched(t *testing.T) {
	repo, db, _ := newRepository(t)
	ctx := context.Background()
	seed(t, repo, map[string]time.Time{
		"twenty-days": now.Add(-20 * 24 * time.Hour),
		"one-day":     now.Add(-24 * time.Hour),
	})
	before, err := repo.GetFeedUpdatedAt(ctx, feedID)
	require.NoError(t, err)

	errInjected := errors.New("disk full")
	err = db.GetDB().Callback().Create().Before("gorm:create").Register("test:fail_records", func(tx *gorm.DB) {
		if tx.Statement.Table == "notification_records" {
			_ = tx.AddError(errInjected)
		}
	})
	require.NoError(t, err)

	published := now.Add(-time.Hour)
	err = repo.Commit(ctx, notifications.NewBatch().
		PruneIndex(feedID, now.Add(-retention)).
		IndexInsertMany(feedID, []notifications.IndexEntry{{NotificationID: "new", PublishedAt: published}}).
		WriteRecordWithExpiry("new", payloadOf("new", published), retention).
		SetFeedUpdated(feedID, now))
	assert.ErrorIs(t, err, notifications.ErrCommitFailed)
	assert.ErrorIs(t, err, errInjected)

	after, err := repo.GetFeedUpdatedAt(ctx, feedID)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
	assert.Equal(t, []string{"twenty-days", "one-day"}, indexIDs(t, repo))
}

func TestRecordExpiry(t *testing.T) {
	repo, _, clock := newRepository(t)
	ctx := context.Background()
	seed(t, repo, map[string]time.Time{"a": now.Add(-time.Hour)})

	clock.Advance(retention - time.Minute)
	_, err := repo.GetRecord(ctx, "a")
	require.NoError(t, err)

	purged, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)

	clock.Advance(time.Minute)
	_, err = repo.GetRecord(ctx, "a")
	assert.ErrorIs(t, err, notifications.ErrRecordNotFound)

	purged, err = repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestRewriteRefreshesExpiry(t *testing.T) {
	repo, _, clock := newRepository(t)
	ctx := context.Background()
	published := now.Add(-time.Hour)
	seed(t, repo, map[string]time.Time{"a": published})

	clock.Advance(retention - time.Hour)
	require.NoError(t, repo.Commit(ctx, notifications.NewBatch().WriteRecordWithExpiry("a", payloadOf("a", published), retention)))

	clock.Advance(2 * time.Hour)
	payload, err := repo.GetRecord(ctx, "a")
	require.NoError(t, err)
	assert.True(t, published.Equal(payload.Published))
}

func TestGetNotificationsSince(t *testing.T) {
	repo, _, clock := newRepository(t)
	ctx := context.Background()
	seed(t, repo, map[string]time.Time{
		"old":    now.Add(-5 * 24 * time.Hour),
		"middle": now.Add(-2 * 24 * time.Hour),
		"recent": now.Add(-time.Hour),
	})

	payloads, err := repo.GetNotificationsSince(ctx, feedID, now.Add(-3*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	assert.Equal(t, "middle", payloads[0].ID)
	assert.Equal(t, "recent", payloads[1].ID)

	empty, err := repo.GetNotificationsSince(ctx, "tt404", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	clock.Advance(retention)
	expired, err := repo.GetNotificationsSince(ctx, feedID, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, expired)
}

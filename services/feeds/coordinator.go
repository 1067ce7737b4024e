package feeds

import (
	"context"
	"feed-notifier/models/constants"
	"feed-notifier/models/entities"
	"feed-notifier/pkg/observer"
	"feed-notifier/repositories/notifications"
	"feed-notifier/services/addons"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// processFeed runs one feed update. It must only be called from the queue, keyed by feed id.
func (service *Impl) processFeed(ctx context.Context, feed entities.Feed) (*Result, error) {
	start := service.clock.Now()

	var (
		result *Result
		err    error
	)
	switch kind := feed.Kind(); kind {
	case entities.FeedKindIntro:
		result, err = service.processIntroFeed(ctx, feed)
	case entities.FeedKindSeries, entities.FeedKindChannel:
		result, err = service.processAddonFeed(ctx, feed, kind)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFeedID, feed.ID)
	}

	count := 0
	if result != nil {
		count = result.Notifications
		log.Debug().
			Str(constants.LogFeedID, feed.ID).
			Time(constants.LogLastUpdate, result.UpdatedAt).
			Int(constants.LogNotificationNb, count).
			Msg("Feed updated")
	}
	service.notify(observer.NewFeedEvent(feed, count, service.clock.Since(start), err))

	return result, err
}

// processIntroFeed seeds the onboarding notification; it never calls an addon.
func (service *Impl) processIntroFeed(ctx context.Context, feed entities.Feed) (*Result, error) {
	now := service.clock.Now().UTC()

	batch := notifications.NewBatch().
		IndexInsertMany(feed.ID, []notifications.IndexEntry{{
			NotificationID: constants.IntroNotificationID,
			PublishedAt:    constants.IntroPublishedAt,
		}}).
		WriteRecordWithExpiry(constants.IntroNotificationID, IntroNotification().Payload, service.config.RetentionWindow).
		SetFeedUpdated(feed.ID, now)

	if err := service.notificationRepo.Commit(ctx, batch); err != nil {
		return nil, err
	}

	return &Result{FeedID: feed.ID, Kind: entities.FeedKindIntro, Notifications: 1, UpdatedAt: now}, nil
}

// IntroNotification is the fixed notification of the intro feed.
func IntroNotification() entities.Notification {
	return entities.Notification{
		ID:          constants.IntroNotificationID,
		FeedID:      constants.IntroFeedID,
		PublishedAt: constants.IntroPublishedAt,
		Payload: entities.NotificationPayload{
			ID:         constants.IntroNotificationID,
			ItemID:     constants.IntroNotificationItem,
			VideoID:    constants.IntroNotificationItem,
			ItemType:   "other",
			ItemName:   constants.IntroNotificationName,
			Name:       constants.IntroNotificationName,
			Title:      constants.IntroNotificationTitle,
			Background: constants.IntroBackgroundURL,
			Type:       notificationType,
			Published:  constants.IntroPublishedAt,
		},
	}
}

func (service *Impl) processAddonFeed(ctx context.Context, feed entities.Feed, kind entities.FeedKind) (*Result, error) {
	now := service.clock.Now().UTC()
	params := addons.MetaParams{
		WindowSize: service.windowSize(kind),
		CacheBreak: CacheBreak(now, service.config.CacheBreakPeriod),
	}

	meta, err := service.addonService.GetMeta(ctx, kind, feed.ID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meta of %s: %w", feed.ID, err)
	}

	candidates, err := service.mapper(feed.ID, meta, now)
	if err != nil {
		return nil, fmt.Errorf("failed to map meta of %s: %w", feed.ID, err)
	}

	cutoff := now.Add(-service.config.RetentionWindow)
	fresh := lo.Filter(candidates, func(notification entities.Notification, _ int) bool {
		return notification.PublishedAt.After(cutoff)
	})

	log.Debug().
		Str(constants.LogFeedID, feed.ID).
		Str(constants.LogFeedKind, string(kind)).
		Int(constants.LogNotificationNb, len(fresh)).
		Msgf("Dropping notifications published before %s", humanize.Time(cutoff))

	batch := notifications.NewBatch().
		PruneIndex(feed.ID, cutoff).
		IndexInsertMany(feed.ID, lo.Map(fresh, func(notification entities.Notification, _ int) notifications.IndexEntry {
			return notifications.IndexEntry{NotificationID: notification.ID, PublishedAt: notification.PublishedAt}
		}))
	for _, notification := range fresh {
		batch.WriteRecordWithExpiry(notification.ID, notification.Payload, service.config.RetentionWindow)
	}
	batch.SetFeedUpdated(feed.ID, now)

	if err := service.notificationRepo.Commit(ctx, batch); err != nil {
		return nil, err
	}

	return &Result{FeedID: feed.ID, Kind: kind, Notifications: len(fresh), UpdatedAt: now}, nil
}

func (service *Impl) windowSize(kind entities.FeedKind) int {
	if kind == entities.FeedKindSeries {
		return service.config.SeriesWindowSize
	}
	return service.config.ChannelWindowSize
}

// CacheBreak buckets now by period so that it only changes once per period.
func CacheBreak(now time.Time, period time.Duration) int64 {
	if period.Milliseconds() <= 0 {
		return now.UnixMilli()
	}
	return now.UnixMilli() / period.Milliseconds()
}

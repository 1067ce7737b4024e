package feeds

import (
	"feed-notifier/models/entities"
	"feed-notifier/services/addons"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// MapMetaToNotifications turns the videos of a meta item into notifications.
func MapMetaToNotifications(feedID string, meta *addons.MetaItem, now time.Time) ([]entities.Notification, error) {
	if meta == nil || meta.ID == "" {
		return nil, ErrInvalidMeta
	}

	switch entities.KindOf(feedID) {
	case entities.FeedKindSeries:
		return mapSeries(feedID, meta, now), nil
	case entities.FeedKindChannel:
		return mapChannel(feedID, meta, now), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFeedID, feedID)
	}
}

func mapSeries(feedID string, meta *addons.MetaItem, now time.Time) []entities.Notification {
	background := fmt.Sprintf("%s/background/small/%s/img?from=notifs", metahubURL, meta.ID)
	outFor := now.Add(-episodeHasBeenOutFor)

	return lo.FilterMap(meta.Videos, func(video addons.Video, _ int) (entities.Notification, bool) {
		episode := video.EpisodeNumber()
		if video.Released == nil || video.Season == nil || episode == nil {
			return entities.Notification{}, false
		}
		if len(video.Streams) == 0 && !video.Released.Before(outFor) {
			return entities.Notification{}, false
		}

		published := video.Released.UTC()
		id := fmt.Sprintf("%s %d %d", meta.ID, *video.Season, *episode)
		return entities.Notification{
			ID:          id,
			FeedID:      feedID,
			PublishedAt: published,
			Payload: entities.NotificationPayload{
				ID:         id,
				ItemID:     meta.ID,
				VideoID:    fmt.Sprintf("%s:%d:%d", meta.ID, *video.Season, *episode),
				ItemType:   string(entities.FeedKindSeries),
				ItemName:   meta.Name,
				Name:       meta.Name,
				Title:      video.DisplayTitle(),
				Background: background,
				Type:       notificationType,
				Season:     lo.ToPtr(*video.Season),
				Episode:    lo.ToPtr(*episode),
				Published:  published,
				Created:    lo.ToPtr(now.UTC()),
			},
		}, true
	})
}

func mapChannel(feedID string, meta *addons.MetaItem, now time.Time) []entities.Notification {
	return lo.FilterMap(meta.Videos, func(video addons.Video, _ int) (entities.Notification, bool) {
		if video.Released == nil || video.ID == "" {
			return entities.Notification{}, false
		}

		published := video.Released.UTC()
		id := fmt.Sprintf("%s %s", meta.ID, video.ID)
		return entities.Notification{
			ID:          id,
			FeedID:      feedID,
			PublishedAt: published,
			Payload: entities.NotificationPayload{
				ID:         id,
				ItemID:     meta.ID,
				VideoID:    video.ID,
				ItemType:   string(entities.FeedKindChannel),
				ItemName:   meta.Name,
				Name:       meta.Name,
				Title:      video.DisplayTitle(),
				Background: meta.Background,
				Type:       notificationType,
				Published:  published,
				Created:    lo.ToPtr(now.UTC()),
			},
		}, true
	})
}

package feeds

import (
	"context"
	"feed-notifier/models/constants"
	"feed-notifier/models/entities"
	"feed-notifier/pkg/observer"
	"feed-notifier/pkg/queue"
	"feed-notifier/repositories/feedsources"
	"feed-notifier/repositories/notifications"
	"feed-notifier/services/addons"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func WithClock(clock clockwork.Clock) Option {
	return func(service *Impl) {
		service.clock = clock
	}
}

func WithMapper(mapper Mapper) Option {
	return func(service *Impl) {
		service.mapper = mapper
	}
}

func New(scheduler gocron.Scheduler,
	config Config,
	addonService addons.Service,
	notificationRepo notifications.Repository,
	feedSourceRepo feedsources.Repository,
	options ...Option) (*Impl, error) {
	service := &Impl{
		config:           config,
		addonService:     addonService,
		notificationRepo: notificationRepo,
		feedSourceRepo:   feedSourceRepo,
		mapper:           MapMetaToNotifications,
		queue:            queue.New[*Result](config.QueueConcurrency),
		clock:            clockwork.NewRealClock(),
		observers:        map[observer.Observer]struct{}{},
	}
	for _, option := range options {
		option(service)
	}

	if service.feedSourceRepo.Count() == 0 {
		err := service.feedSourceRepo.Create(entities.Feed{ID: constants.IntroFeedID, SubscribedAt: service.clock.Now().UTC()})
		if err != nil {
			log.Error().Err(err).Msg("Error on save intro feed")
		}
	}

	_, errUpdateJob := scheduler.NewJob(
		gocron.CronJob(config.UpdateCronTab, false),
		gocron.NewTask(func() {
			if err := service.UpdateSubscribedFeeds(); err != nil {
				log.Error().Err(err).Msg("Cannot update subscribed feeds")
			}
		}),
		gocron.WithName("Update feeds"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if errUpdateJob != nil {
		return nil, errUpdateJob
	}

	_, errPurgeJob := scheduler.NewJob(
		gocron.CronJob(config.PurgeCronTab, false),
		gocron.NewTask(func() {
			if err := service.PurgeExpiredNotifications(); err != nil {
				log.Error().Err(err).Msg("Cannot purge expired notifications")
			}
		}),
		gocron.WithName("Purge expired notifications"),
	)
	if errPurgeJob != nil {
		return nil, errPurgeJob
	}

	return service, nil
}

// Start updates the subscribed feeds once in the background when UpdateAtStartup is set.
// It is meant to be called after every observer has been registered.
func (service *Impl) Start() {
	if !service.config.UpdateAtStartup {
		return
	}

	go func() {
		if err := service.UpdateSubscribedFeeds(); err != nil {
			log.Error().Err(err).Msg("Cannot update subscribed feeds at startup")
		}
	}()
}

func (service *Impl) RegisterObserver(o observer.Observer) {
	service.observersMu.Lock()
	defer service.observersMu.Unlock()
	service.observers[o] = struct{}{}
}

func (service *Impl) notify(e observer.Event) {
	e.Pending = service.queue.Pending()

	service.observersMu.RLock()
	defer service.observersMu.RUnlock()
	for o := range service.observers {
		o.OnNotify(e)
	}
}

func (service *Impl) Pending() int {
	return service.queue.Pending()
}

// Shutdown waits for the queued feed updates to finish and refuses new ones.
func (service *Impl) Shutdown() {
	service.queue.Close()
}

// ProcessFeed updates one feed, after every update already queued for the same feed.
func (service *Impl) ProcessFeed(ctx context.Context, feed entities.Feed) (*Result, error) {
	return service.submit(ctx, feed).Wait(ctx)
}

func (service *Impl) submit(ctx context.Context, feed entities.Feed) *queue.Future[*Result] {
	return service.queue.Submit(feed.ID, func() (*Result, error) {
		return service.processFeed(ctx, feed)
	})
}

// UpdateFeeds updates every feed and waits for all of them. The returned slice is
// aligned with feeds; the slot of a feed that failed is nil.
func (service *Impl) UpdateFeeds(ctx context.Context, feeds []entities.Feed) []*Result {
	batchID := uuid.NewString()
	log.Info().
		Str(constants.LogBatchID, batchID).
		Int(constants.LogFeedNumber, len(feeds)).
		Msg("Updating feeds...")

	futures := lo.Map(feeds, func(feed entities.Feed, _ int) *queue.Future[*Result] {
		return service.submit(ctx, feed)
	})

	results := make([]*Result, len(feeds))
	updated := 0
	for i, future := range futures {
		result, err := future.Wait(ctx)
		if err != nil {
			log.Error().Err(err).
				Str(constants.LogBatchID, batchID).
				Str(constants.LogFeedID, feeds[i].ID).
				Msg("Error updating feed")
			continue
		}
		results[i] = result
		updated++
	}

	service.notify(observer.Event{E: observer.BatchCompletedEvent, Count: int64(len(feeds))})
	log.Info().
		Str(constants.LogBatchID, batchID).
		Int(constants.LogFeedNumber, updated).
		Msgf("%s/%s feed(s) updated", humanize.Comma(int64(updated)), humanize.Comma(int64(len(feeds))))

	return results
}

// UpdateSubscribedFeeds updates every feed of the registry.
func (service *Impl) UpdateSubscribedFeeds() error {
	feeds, err := service.feedSourceRepo.GetFeeds()
	if err != nil {
		return fmt.Errorf("failed to read subscribed feeds: %w", err)
	}

	service.UpdateFeeds(context.Background(), feeds)
	return nil
}

func (service *Impl) PurgeExpiredNotifications() error {
	purged, err := service.notificationRepo.PurgeExpired(context.Background())
	if err != nil {
		return err
	}

	service.notify(observer.Event{E: observer.RecordsPurgedEvent, Count: purged})
	log.Info().
		Int64(constants.LogPurgedNb, purged).
		Msgf("%s expired notification(s) purged", humanize.Comma(purged))
	return nil
}

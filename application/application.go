package application

import (
	"context"
	"feed-notifier/models/constants"
	"feed-notifier/models/entities"
	feedSourceRepo "feed-notifier/repositories/feedsources"
	notificationRepo "feed-notifier/repositories/notifications"
	"feed-notifier/services/addons"
	"feed-notifier/services/feeds"
	"feed-notifier/services/health"
	databases "feed-notifier/utils/databases"
	"feed-notifier/utils/insights"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const probesShutdownTimeout = 5 * time.Second

func New() (*Impl, error) {
	db := databases.New(viper.GetString(constants.SqliteURL))
	if errDB := db.Run(); errDB != nil {
		return nil, errDB
	}

	errMigration := db.Migrate(&entities.Feed{}, &entities.FeedUpdate{}, &entities.FeedIndexEntry{}, &entities.NotificationRecord{})
	if errMigration != nil {
		return nil, errMigration
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	probes := insights.NewProbes(viper.GetInt(constants.ProbePort), db.IsConnected, registry)

	scheduler, errScheduler := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if errScheduler != nil {
		return nil, errScheduler
	}

	// Repositories
	notifRepo := notificationRepo.New(db)
	sourceRepo := feedSourceRepo.New(db)

	addonService := addons.New(
		viper.GetString(constants.CinemetaURL),
		viper.GetString(constants.ChannelsURL),
		viper.GetDuration(constants.AddonHTTPTimeout),
		viper.GetDuration(constants.CacheBreakPeriod),
	)

	feedService, errFeeds := feeds.New(scheduler, feeds.Config{
		RetentionWindow:   viper.GetDuration(constants.RetentionWindow),
		CacheBreakPeriod:  viper.GetDuration(constants.CacheBreakPeriod),
		QueueConcurrency:  viper.GetInt(constants.QueueConcurrency),
		SeriesWindowSize:  viper.GetInt(constants.SeriesWindowSize),
		ChannelWindowSize: viper.GetInt(constants.ChannelWindowSize),
		UpdateCronTab:     viper.GetString(constants.FeedsUpdateCronTab),
		PurgeCronTab:      viper.GetString(constants.NotificationsPurgeCronTab),
		UpdateAtStartup:   viper.GetBool(constants.Production),
	}, addonService, notifRepo, sourceRepo)
	if errFeeds != nil {
		return nil, errFeeds
	}

	feedService.RegisterObserver(insights.NewMetrics(registry))

	healthService, errHealth := health.New(scheduler, viper.GetString(constants.HealthCronTab),
		clockwork.NewRealClock(), feedService.Pending)
	if errHealth != nil {
		return nil, errHealth
	}

	return &Impl{
		scheduler:     scheduler,
		healthService: healthService,
		feedService:   feedService,
		db:            db,
		probes:        probes,
	}, nil
}

func (app *Impl) Run() {
	app.scheduler.Start()
	app.feedService.Start()
	for _, job := range app.scheduler.Jobs() {
		scheduledTime, err := job.NextRun()
		if err == nil {
			log.Info().Msgf("%v scheduled at %v", job.Name(), scheduledTime)
		}
	}

	app.probes.ListenAndServe()
}

func (app *Impl) Shutdown() {
	if err := app.scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Cannot shutdown scheduler, continuing...")
	}
	app.feedService.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), probesShutdownTimeout)
	defer cancel()
	if err := app.probes.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Cannot shutdown probes, continuing...")
	}

	log.Info().Msgf("Application has been running for %v", app.healthService.Uptime())
	app.db.Shutdown()
	log.Info().Msgf("Application is no longer running")
}

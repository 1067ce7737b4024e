package application

import (
	"feed-notifier/services/feeds"
	"feed-notifier/services/health"
	databases "feed-notifier/utils/databases"
	"feed-notifier/utils/insights"

	"github.com/go-co-op/gocron/v2"
)

type Application interface {
	Run()
	Shutdown()
}

type Impl struct {
	scheduler     gocron.Scheduler
	healthService health.Service
	feedService   feeds.Service
	db            databases.SqlConnection
	probes        insights.Probes
}

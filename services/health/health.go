package health

import (
	"feed-notifier/models/constants"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// New logs a heartbeat on cronTab, along with the number of feed updates in flight.
func New(scheduler gocron.Scheduler, cronTab string, clock clockwork.Clock, pending func() int) (*Impl, error) {
	service := Impl{
		startedAt: clock.Now(),
		clock:     clock,
		pending:   pending,
	}

	_, errJob := scheduler.NewJob(
		gocron.CronJob(cronTab, false),
		gocron.NewTask(func() { service.echo() }),
		gocron.WithName("Check app running"),
	)
	if errJob != nil {
		return nil, errJob
	}

	return &service, nil
}

func (service *Impl) Uptime() time.Duration {
	return service.clock.Since(service.startedAt)
}

func (service *Impl) echo() {
	log.Info().
		Dur(constants.LogUptime, service.Uptime()).
		Int(constants.LogPendingNb, service.pending()).
		Msgf("Application is running, started %s", humanize.Time(service.startedAt))
}

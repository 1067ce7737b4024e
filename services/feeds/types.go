package feeds

import (
	"context"
	"errors"
	"feed-notifier/models/entities"
	"feed-notifier/pkg/observer"
	"feed-notifier/pkg/queue"
	"feed-notifier/repositories/feedsources"
	"feed-notifier/repositories/notifications"
	"feed-notifier/services/addons"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	metahubURL = "https://images.metahub.space"

	notificationType = "notification"

	// A video without streams is announced only once it has been out for this long.
	episodeHasBeenOutFor = 6 * time.Hour
)

var (
	ErrUnsupportedFeedID = errors.New("unsupported feed ID")
	ErrInvalidMeta       = errors.New("meta cannot be mapped to notifications")
)

// Mapper derives the candidate notifications of a feed from its meta. Output order is not significant.
type Mapper func(feedID string, meta *addons.MetaItem, now time.Time) ([]entities.Notification, error)

type Config struct {
	RetentionWindow   time.Duration
	CacheBreakPeriod  time.Duration
	QueueConcurrency  int
	SeriesWindowSize  int
	ChannelWindowSize int
	UpdateCronTab     string
	PurgeCronTab      string
	UpdateAtStartup   bool
}

// Result describes one successful feed update.
type Result struct {
	FeedID        string
	Kind          entities.FeedKind
	Notifications int
	UpdatedAt     time.Time
}

type Option func(*Impl)

type Service interface {
	RegisterObserver(o observer.Observer)
	Start()
	ProcessFeed(ctx context.Context, feed entities.Feed) (*Result, error)
	UpdateFeeds(ctx context.Context, feeds []entities.Feed) []*Result
	UpdateSubscribedFeeds() error
	PurgeExpiredNotifications() error
	Pending() int
	Shutdown()
}

type Impl struct {
	config           Config
	addonService     addons.Service
	notificationRepo notifications.Repository
	feedSourceRepo   feedsources.Repository
	mapper           Mapper
	queue            *queue.Queue[*Result]
	clock            clockwork.Clock
	observersMu      sync.RWMutex
	observers        map[observer.Observer]struct{}
}

package constants

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	ConfigFileName = ".env"

	ExternalName = "feed-notifier"
	Version      = "1.0.0"

	// Lifetime of a notification, both in the feed index and as a stored record. Duration type.
	RetentionWindow = "RETENTION_WINDOW"

	// Cadence at which the cache-break token sent to addons changes. Duration type.
	CacheBreakPeriod = "CACHE_BREAK_PERIOD"

	// Max number of feeds updated in parallel.
	QueueConcurrency = "QUEUE_CONCURRENCY"

	// Number of most recent videos requested per series feed.
	SeriesWindowSize = "SERIES_WINDOW_SIZE"

	// Number of most recent videos requested per channel feed.
	ChannelWindowSize = "CHANNEL_WINDOW_SIZE"

	// Base URL of the addon serving series metadata.
	CinemetaURL = "CINEMETA_URL"

	// Base URL of the addon serving channel metadata.
	ChannelsURL = "CHANNELS_URL"

	// HTTP timeout for addon calls. Duration type.
	AddonHTTPTimeout = "ADDON_HTTP_TIMEOUT"

	// Cron tab to update subscribed feeds.
	FeedsUpdateCronTab = "FEEDS_UPDATE_CRON_TAB"

	// Cron tab to purge expired notification records.
	NotificationsPurgeCronTab = "NOTIFICATIONS_PURGE_CRON_TAB"

	// Cron tab to health.
	HealthCronTab = "HEALTH_CRON_TAB"

	// SQLITE_URL URL.
	SqliteURL = "SQLITE_URL"

	// Zerolog values from [trace, debug, info, warn, error, fatal, panic].
	LogLevel = "LOG_LEVEL"

	// Probe port.
	ProbePort = "PROBE_PORT"

	// Boolean; when true, feeds are updated once at startup without waiting for the first cron tick.
	Production = "PRODUCTION"

	defaultRetentionWindow           = 30 * 24 * time.Hour
	defaultCacheBreakPeriod          = 10 * time.Minute
	defaultQueueConcurrency          = 50
	defaultSeriesWindowSize          = 3
	defaultChannelWindowSize         = 8
	defaultCinemetaURL               = "https://v3-cinemeta.strem.io"
	defaultChannelsURL               = "https://v3-channels.strem.io"
	defaultAddonHTTPTimeout          = 15 * time.Second
	defaultFeedsUpdateCronTab        = "*/10 * * * *"
	defaultNotificationsPurgeCronTab = "0 * * * *"
	defaultHealthCrontab             = "* * * * *"
	defaultSqliteURL                 = "feed-notifier.db"
	defaultProbePort                 = 9090
	defaultLogLevel                  = zerolog.InfoLevel
	defaultProduction                = false
)

func GetDefaultConfigValues() map[string]any {
	return map[string]any{
		RetentionWindow:           defaultRetentionWindow,
		CacheBreakPeriod:          defaultCacheBreakPeriod,
		QueueConcurrency:          defaultQueueConcurrency,
		SeriesWindowSize:          defaultSeriesWindowSize,
		ChannelWindowSize:         defaultChannelWindowSize,
		CinemetaURL:               defaultCinemetaURL,
		ChannelsURL:               defaultChannelsURL,
		AddonHTTPTimeout:          defaultAddonHTTPTimeout,
		FeedsUpdateCronTab:        defaultFeedsUpdateCronTab,
		NotificationsPurgeCronTab: defaultNotificationsPurgeCronTab,
		HealthCronTab:             defaultHealthCrontab,
		SqliteURL:                 defaultSqliteURL,
		ProbePort:                 defaultProbePort,
		LogLevel:                  defaultLogLevel.String(),
		Production:                defaultProduction,
	}
}

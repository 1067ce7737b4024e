package constants

import "github.com/rs/zerolog"

const (
	LogFileName       = "fileName"
	LogFeedID         = "feedID"
	LogFeedKind       = "feedKind"
	LogFeedNumber     = "feedNumber"
	LogBatchID        = "batchID"
	LogNotificationNb = "notificationNumber"
	LogCacheBreak     = "cacheBreak"
	LogAddonURL       = "addonURL"
	LogLastUpdate     = "lastUpdate"
	LogPurgedNb       = "purgedNumber"
	LogPendingNb      = "pendingNumber"
	LogProbeAddress   = "probeAddress"
	LogUptime         = "uptime"
	LogRetention      = "retentionWindow"
	LogConcurrency    = "queueConcurrency"
	LogCronTab        = "cronTab"
	LogLevelFallback  = zerolog.InfoLevel
)

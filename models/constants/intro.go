package constants

import "time"

const (
	// Reserved feed id seeding the onboarding notification.
	IntroFeedID = "stremio_intro"

	IntroNotificationID    = "stremio_intro_guide"
	IntroNotificationName  = "Welcome to Stremio"
	IntroNotificationTitle = "Learn how to get notified about new episodes and videos"
	IntroNotificationItem  = "stremio_intro_guide"
	IntroBackgroundURL     = "https://www.strem.io/images/intro-guide-background.jpg"
)

var IntroPublishedAt = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

package health

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type Service interface {
	Uptime() time.Duration
}

type Impl struct {
	startedAt time.Time
	clock     clockwork.Clock
	pending   func() int
}

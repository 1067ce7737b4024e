package insights

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "feed_notifier"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

type Probes interface {
	ListenAndServe()
	Shutdown(ctx context.Context) error
}

type ProbesImpl struct {
	server  *http.Server
	router  *gin.Engine
	isReady func() bool
}

type Metrics struct {
	feedUpdates    *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	notifications  *prometheus.CounterVec
	pendingUpdates prometheus.Gauge
	batchSize      prometheus.Gauge
	purgedRecords  prometheus.Counter
}

package insights

import (
	"context"
	"errors"
	"feed-notifier/models/constants"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const readHeaderTimeout = 5 * time.Second

// NewProbes serves liveness, readiness and the metrics gathered by gatherer on port.
func NewProbes(port int, isReady func() bool, gatherer prometheus.Gatherer) *ProbesImpl {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	probes := ProbesImpl{
		router:  router,
		isReady: isReady,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}

	router.GET("/health", probes.health)
	router.GET("/ready", probes.ready)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return &probes
}

func (probes *ProbesImpl) Handler() http.Handler {
	return probes.router
}

// ListenAndServe starts serving in the background.
func (probes *ProbesImpl) ListenAndServe() {
	log.Info().Str(constants.LogProbeAddress, probes.server.Addr).Msg("Probes are listening")
	go func() {
		err := probes.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Probes stopped serving")
		}
	}()
}

func (probes *ProbesImpl) Shutdown(ctx context.Context) error {
	return probes.server.Shutdown(ctx)
}

func (probes *ProbesImpl) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (probes *ProbesImpl) ready(c *gin.Context) {
	if !probes.isReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Package metrics exposes storefront counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Persisted cart mutations by operation.",
	}, []string{"op"})

	FeedDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_feed_decisions_total",
		Help: "Discovery feed decisions by kind.",
	}, []string{"decision"})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_fetch_errors_total",
		Help: "Failed remote queries by resource.",
	}, []string{"resource"})
)

// Serve runs the /metrics listener until ctx is done.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics listener stopped")
	}
}

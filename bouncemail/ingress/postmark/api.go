package postmark

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Pandentia/bouncemail/bouncemail/dispatch"
)

const shutdownTimeout = 10 * time.Second

// API describes this ingress API.
type API struct {
	Logger     zerolog.Logger
	Dispatcher *dispatch.Dispatcher
	Gatherer   prometheus.Gatherer // serves /metrics when set
}

// Router builds the gin engine with every ingress route.
func (api *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/bounce", api.bounceHandler)
	r.POST("/webhooks/bounce", api.bounceHandler)
	r.GET("/healthz", api.healthHandler)
	if api.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(api.Gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

// Run runs the API instance at a given bind address until ctx is done, then
// waits for in-flight requests and alerts.
func (api *API) Run(ctx context.Context, bind string) error {
	logger := api.Logger.With().Str("module", "server").Logger()
	gin.SetMode(gin.ReleaseMode)

	server := &http.Server{
		Addr:              bind,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	logger.Info().Str("bind", bind).Msg("Ingress API listening")

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	api.Dispatcher.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"maunium.net/go/mautrix"

	"github.com/beeper/libserv/pkg/requestlog"

	"github.com/beeper/wellknownserv/internal/config"
	"github.com/beeper/wellknownserv/internal/middleware"
	"github.com/beeper/wellknownserv/internal/util"
)

const shutdownTimeout = 30 * time.Second

type Routes struct {
	log    zerolog.Logger
	server *http.Server

	// Encoded once on startup and never modified, so safe to share between
	// requests without locking
	wellKnownServerBody []byte
}

func NewRoutes(
	cfg config.WellKnownConfig,
	logger zerolog.Logger,
	listenAddr string,
) *Routes {
	log := logger.With().
		Str("component", "routes").
		Logger()

	r := &Routes{
		log:                 log,
		wellKnownServerBody: makeWellKnownServerBody(cfg.Server),
	}

	r.server = &http.Server{
		Addr:    listenAddr,
		Handler: r.MakeHandler(),
	}

	return r
}

func (r *Routes) MakeHandler() http.Handler {
	// Create base router w/recovery & logging
	rtr := chi.NewRouter()
	rtr.Use(hlog.NewHandler(r.log))
	rtr.Use(hlog.RequestIDHandler("request_id", ""))
	rtr.Use(requestlog.AccessLogger(true))
	rtr.Use(middleware.NewRecoveryMiddleware(r.log))

	rtr.MethodFunc(http.MethodGet, "/.well-known/matrix/server", r.WellKnownServer)

	rtr.NotFound(func(w http.ResponseWriter, r *http.Request) {
		util.ResponseErrorJSON(w, r, mautrix.MNotFound)
	})
	rtr.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		util.ResponseErrorJSON(w, r, util.MMethodNotAllowed)
	})

	return rtr
}

func (r *Routes) Start() {
	r.log.Info().Msgf("Start listen on: %s", r.server.Addr)

	go func() {
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.log.Panic().Err(err).Msg("Error in server listener")
		}
	}()
}

func (r *Routes) Stop() {
	r.log.Info().Msg("Shutdown initiated...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.server.Shutdown(ctx); err != nil {
		r.log.Err(err).Msg("Server shutdown failed")
		return
	}

	r.log.Info().Msg("Server stopped")
}

package internal

import (
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/beeper/wellknownserv/internal/config"
	"github.com/beeper/wellknownserv/internal/routes"
)

type Wellknownserv struct {
	routes *routes.Routes
}

func NewWellknownserv(cfg config.WellKnownConfig, listenAddr string) *Wellknownserv {
	log := log.With().
		Str("instance_id", xid.New().String()).
		Logger()

	log.Info().
		Str("m_server", string(cfg.Server)).
		Msg("Serving federation server discovery")

	return &Wellknownserv{
		routes: routes.NewRoutes(cfg, log, listenAddr),
	}
}

func (w *Wellknownserv) Start() {
	w.routes.Start()
}

func (w *Wellknownserv) Stop() {
	w.routes.Stop()
}

package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/beeper/wellknownserv/internal"
	"github.com/beeper/wellknownserv/internal/config"
)

func main() {
	debug := flag.Bool("debug", false, "Display debug logs")
	trace := flag.Bool("trace", false, "Display trace logs")
	prettyLogs := flag.Bool("prettyLogs", false, "Display pretty logs")
	listenAddr := flag.String("listenAddr", ":8000", "Address to listen on")
	flag.Parse()

	if *prettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("Debug logging enabled")
	}
	if *trace {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
		log.Trace().Msg("Trace logging enabled")
	}

	log.Debug().
		Msg("Starting Wellknownserv")

	// Never start listening without an m.server to serve
	cfg, err := config.NewWellKnownConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Str("env", config.ServerNameEnv).Msg("Failed to load config")
	}
	if err := cfg.Validate(); errors.Is(err, config.ErrEmptyServer) {
		log.Fatal().Err(err).Str("env", config.ServerNameEnv).Msg("Invalid config")
	} else if err != nil {
		log.Warn().Err(err).Msg("m.server does not look like a valid server name, serving anyway")
	}

	wellknownserv := internal.NewWellknownserv(cfg, *listenAddr)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("Starting wellknownserv...")
	wellknownserv.Start()

	<-done
	wellknownserv.Stop()
}

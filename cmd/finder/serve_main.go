package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/paramsearch/finder/internal/config"
	"github.com/paramsearch/finder/internal/finder"
	httpdebug "github.com/paramsearch/finder/internal/interfaces/http"
	"github.com/paramsearch/finder/internal/metrics"
	"github.com/paramsearch/finder/internal/offload"
)

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var client *offload.Client
	if cfg.Offload.Enabled {
		client = offload.NewClient(offloadClientConfig(cfg))
	}
	engine := finder.NewEngine(finder.EngineConfig{
		Offload:  client,
		Metrics:  m,
		CacheTTL: cfg.Cache.TTL(),
	})

	serverCfg := httpdebug.DefaultServerConfig()
	if cfg.Debug.Host != "" {
		serverCfg.Host = cfg.Debug.Host
	}
	if cfg.Debug.Port != 0 {
		serverCfg.Port = cfg.Debug.Port
	}
	server, err := httpdebug.NewServer(serverCfg, engine, nil, client, registry)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

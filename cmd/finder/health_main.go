package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paramsearch/finder/internal/config"
	"github.com/paramsearch/finder/internal/offload"
)

func runOffloadHealth(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Offload.BaseURL == "" {
		return fmt.Errorf("offload base_url not configured")
	}

	client := offload.NewClient(offloadClientConfig(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if client.HealthCheck(ctx) {
		fmt.Printf("offload engine at %s: healthy\n", cfg.Offload.BaseURL)
		return nil
	}
	return fmt.Errorf("offload engine at %s: unhealthy or unreachable", cfg.Offload.BaseURL)
}

func offloadClientConfig(cfg config.Config) offload.ClientConfig {
	clientCfg := offload.DefaultClientConfig()
	clientCfg.BaseURL = cfg.Offload.BaseURL
	if cfg.Offload.TimeoutSec > 0 {
		clientCfg.Timeout = time.Duration(cfg.Offload.TimeoutSec) * time.Second
	}
	if cfg.Offload.BreakerTimeSec > 0 {
		clientCfg.BreakerTimeout = time.Duration(cfg.Offload.BreakerTimeSec) * time.Second
	}
	if cfg.Offload.MaxFailures > 0 {
		clientCfg.MaxFailures = uint32(cfg.Offload.MaxFailures)
	}
	return clientCfg
}

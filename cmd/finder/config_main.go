package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paramsearch/finder/internal/config"
)

func runConfigCheck(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	fmt.Printf("config OK\n")
	fmt.Printf("  symbol:     %s %s\n", cfg.Symbol, cfg.Interval)
	fmt.Printf("  mode:       %s (top %d, max %d runs)\n", cfg.Finder.Mode, cfg.Finder.TopN, cfg.Finder.MaxRuns)
	fmt.Printf("  durability: %v\n", cfg.Finder.Durability.Enabled)
	fmt.Printf("  offload:    %v", cfg.Offload.Enabled)
	if cfg.Offload.Enabled {
		fmt.Printf(" (%s)", cfg.Offload.BaseURL)
	}
	fmt.Println()
	fmt.Printf("  strategies: %d\n", len(cfg.Strategies))
	return nil
}

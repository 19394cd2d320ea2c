package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paramsearch/finder/internal/config"
	"github.com/paramsearch/finder/internal/finder/sampler"
)

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if len(cfg.Strategies) == 0 {
		return fmt.Errorf("no strategies configured")
	}
	only, _ := cmd.Flags().GetString("strategy")
	limit, _ := cmd.Flags().GetInt("limit")

	gen := sampler.New(cfg.Finder)
	for _, s := range cfg.Strategies {
		if only != "" && s.Key != only {
			continue
		}
		plan := gen.Generate(s.Params, cfg.Finder)
		fmt.Printf("%s (%s): %d parameter sets, mode=%s\n", s.Name, s.Key, len(plan), cfg.Finder.Mode)
		for i, params := range plan {
			if i >= limit {
				fmt.Printf("  ... %d more\n", len(plan)-limit)
				break
			}
			fmt.Printf("  %3d  %s\n", i+1, params.String())
		}
	}
	return nil
}

package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
)

// logEstimateHeader prints the source and bootstrap settings of an estimate run.
func logEstimateHeader(cfg *contract.Config, source string) {
	if cfg.UseEmojis {
		fmt.Printf("🔎 Source: %s (%s)\n", source, describeCycles(cfg))
		fmt.Printf("🎲 Bootstrap: %d x %d draws, quantile %g, seed %d\n",
			cfg.Estimator.BootstrapCount, cfg.Estimator.BootstrapSample, cfg.Estimator.Quantile, cfg.Estimator.Seed)
		return
	}
	fmt.Printf("Source: %s (%s)\n", source, describeCycles(cfg))
	fmt.Printf("Bootstrap: %d x %d draws, quantile %g, seed %d\n",
		cfg.Estimator.BootstrapCount, cfg.Estimator.BootstrapSample, cfg.Estimator.Quantile, cfg.Estimator.Seed)
}

// logCheckHeader prints the cycle being checked and where its standard times come from.
func logCheckHeader(cfg *contract.Config, source string) {
	standardTimes := "estimated from earlier cycles"
	if cfg.StandardTimesFile != "" {
		standardTimes = cfg.StandardTimesFile
	}
	if cfg.UseEmojis {
		fmt.Printf("🔎 Source: %s\n", source)
		fmt.Printf("📅 Cycle: %s (standard times: %s)\n", cfg.CheckCycle.Format(schema.CycleLayout), standardTimes)
		return
	}
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("Cycle: %s (standard times: %s)\n", cfg.CheckCycle.Format(schema.CycleLayout), standardTimes)
}

// describeCycles summarizes the cycle selection for headers.
func describeCycles(cfg *contract.Config) string {
	switch n := len(cfg.Cycles); n {
	case 0:
		return "all cycles"
	case 1:
		return "cycle " + cfg.Cycles[0].Format(schema.CycleLayout)
	default:
		parts := []string{cfg.Cycles[0].Format(schema.CycleLayout), cfg.Cycles[n-1].Format(schema.CycleLayout)}
		return fmt.Sprintf("%d cycles, %s", n, strings.Join(parts, " → "))
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/najoast/signalmesh/engine"
	"github.com/spf13/cobra"
)

func buildBenchCommand() *cobra.Command {
	var modelCount int
	var signalsPerModel int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure signal throughput and latency for a burst send",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(modelCount, signalsPerModel)
		},
	}

	cmd.Flags().IntVar(&modelCount, "models", 8, "number of models to send signals to")
	cmd.Flags().IntVar(&signalsPerModel, "signals", 10000, "signals to send to each model")

	return cmd
}

func runBench(modelCount, signalsPerModel int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cfg)

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}
	if err := provider.Start(); err != nil {
		return fmt.Errorf("starting provider: %w", err)
	}

	models := make([]*engine.Model, modelCount)
	for i := 0; i < modelCount; i++ {
		m := provider.NewModel()
		m.SetUserData(&greeter{name: fmt.Sprintf("bench-%d", i)})
		models[i] = m
	}

	total := modelCount * signalsPerModel
	start := time.Now()
	for _, m := range models {
		for i := 0; i < signalsPerModel; i++ {
			if err := engine.SendSignal(provider.Router(), nil, m, "greet", "bench", 0); err != nil {
				return fmt.Errorf("send rejected: %w", err)
			}
		}
	}
	sendElapsed := time.Since(start)

	for _, m := range models {
		for m.Pending() {
			time.Sleep(time.Millisecond)
		}
	}
	totalElapsed := time.Since(start)

	fmt.Printf("sent %d signals across %d models in %s (%.0f signals/sec)\n",
		total, modelCount, sendElapsed, float64(total)/sendElapsed.Seconds())
	fmt.Printf("fully drained after %s (%.0f signals/sec end-to-end)\n",
		totalElapsed, float64(total)/totalElapsed.Seconds())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Engine.ShutdownTimeout)
	defer cancel()
	return provider.Shutdown(ctx)
}

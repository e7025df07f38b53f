package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/najoast/signalmesh/config"
	"github.com/najoast/signalmesh/engine"
	"github.com/najoast/signalmesh/metrics"
	"github.com/spf13/cobra"
)

var configFile string

// buildRootCommand assembles the signalmeshd command tree: a persistent
// --config flag plus the run and bench subcommands.
func buildRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "signalmeshd",
		Short:   "signalmesh: an actor-style signal mesh runtime",
		Version: "0.1.0",
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: auto-discovered)")

	root.AddCommand(buildRunCommand())
	root.AddCommand(buildBenchCommand())

	return root
}

func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if configFile != "" {
		return loader.LoadFromFile(configFile)
	}
	return loader.AutoLoad()
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// buildSchema constructs the parallelism schema cfg.Engine.Schema names.
func buildSchema(cfg *config.Config) engine.Schema {
	switch cfg.Engine.Schema {
	case config.SchemaPool:
		schema := engine.NewPoolSchema(cfg.Engine.Pool.TargetPools, cfg.Engine.Pool.TargetDensity)
		if cfg.Engine.Pool.SupervisorInterval > 0 {
			schema.SupervisorInterval = cfg.Engine.Pool.SupervisorInterval
		}
		if cfg.Engine.PerformanceInterval > 0 {
			schema.PerformanceInterval = cfg.Engine.PerformanceInterval
		}
		return schema
	default:
		schema := engine.NewPerModelSchema()
		if cfg.Engine.PerModel.GateTimeout > 0 {
			schema.GateTimeout = cfg.Engine.PerModel.GateTimeout
		}
		schema.MinimumLoopTime = cfg.Engine.PerModel.MinimumLoopTime
		if cfg.Engine.PerformanceInterval > 0 {
			schema.PerformanceInterval = cfg.Engine.PerformanceInterval
		}
		return schema
	}
}

func buildProvider(cfg *config.Config, logger *slog.Logger) (*engine.Provider, error) {
	router := engine.NewRouter(engine.RouterOptions{
		DefaultSignals: cfg.Engine.DefaultSignals,
		DefaultCodecs:  cfg.Engine.DefaultCodecs,
	})

	if _, err := engine.RegisterHandlers(router, &greeter{}); err != nil {
		return nil, fmt.Errorf("registering demo handlers: %w", err)
	}

	schema := buildSchema(cfg)
	provider := engine.NewProvider(router, schema)
	provider.SetLogger(logger)
	return provider, nil
}

func buildRunCommand() *cobra.Command {
	var modelCount int
	var greetInterval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a live signalmesh demo: spawn models and greet them on a timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMesh(modelCount, greetInterval)
		},
	}

	cmd.Flags().IntVar(&modelCount, "models", 4, "number of demo models to spawn")
	cmd.Flags().DurationVar(&greetInterval, "greet-interval", time.Second, "how often to greet each model")

	return cmd
}

func runMesh(modelCount int, greetInterval time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cfg)

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}

	var collector *metrics.Collector
	if cfg.Monitor.Enabled && cfg.Monitor.HTTP.Enabled {
		collector = metrics.NewCollector()
		provider.SetMetricsSink(collector)
		addr := metrics.Addr(cfg.Monitor.HTTP.Address, cfg.Monitor.HTTP.Port)
		go func() {
			logger.Info("metrics server starting", "addr", addr, "path", cfg.Monitor.HTTP.MetricsPath)
			if err := metrics.StartServer(addr); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	if err := provider.Start(); err != nil {
		return fmt.Errorf("starting provider: %w", err)
	}
	logger.Info("signalmesh running", "app", cfg.App.Name, "schema", cfg.Engine.Schema, "models", modelCount)

	models := make([]*engine.Model, modelCount)
	for i := 0; i < modelCount; i++ {
		m := provider.NewModel()
		m.SetUserData(&greeter{name: fmt.Sprintf("model-%d", i)})
		models[i] = m
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go greetLoop(ctx, provider, models, greetInterval, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received, draining models")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Engine.ShutdownTimeout)
	defer shutdownCancel()
	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not complete cleanly", "error", err)
	}
	logger.Info("signalmesh stopped")
	return nil
}

func greetLoop(ctx context.Context, provider *engine.Provider, models []*engine.Model, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, m := range models {
				if err := engine.SendSignal(provider.Router(), nil, m, "greet", "operator", 0); err != nil {
					logger.Warn("greet send rejected", "model", m.ID().String(), "error", err)
				}
			}
		}
	}
}

// greeter is the demo behavior type: RegisterHandlers discovers OnGreet and
// OnPing from its method set, and every model's own *greeter instance
// (attached via SetUserData) is what actually runs at dispatch time.
type greeter struct {
	name  string
	count int
}

func (g *greeter) OnGreet(from string) error {
	g.count++
	fmt.Printf("%s: hello from %s (greeting #%d)\n", g.name, from, g.count)
	return nil
}

func (g *greeter) OnPing() error {
	fmt.Printf("%s: pong\n", g.name)
	return nil
}

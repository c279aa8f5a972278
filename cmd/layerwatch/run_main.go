package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/sawpanic/layerwatch/internal/config"
	"github.com/sawpanic/layerwatch/internal/csvlog"
	"github.com/sawpanic/layerwatch/internal/layer"
	"github.com/sawpanic/layerwatch/internal/metrics"
	"github.com/sawpanic/layerwatch/internal/monitor"
	"github.com/sawpanic/layerwatch/internal/ops"
	"github.com/sawpanic/layerwatch/internal/snapshot"
)

// runRun starts the monitor daemon.
func runRun(cmd *cobra.Command, args []string) error {
	once, _ := cmd.Flags().GetBool("once")

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	board := ops.NewBoard()

	client := layer.NewClient(layer.Config{
		BaseURL:        cfg.BaseURL,
		Denom:          cfg.Denom,
		RequestTimeout: cfg.GetRequestTimeout(),
	})
	client.SetObserver(registry)

	builder := snapshot.NewBuilder(client, layer.DefaultFields())
	appender := csvlog.NewAppender()

	monitors := make([]*monitor.Monitor, 0, len(cfg.Accounts))
	for _, account := range cfg.Accounts {
		logPath := filepath.Join(cfg.OutputDir, account.Name+".csv")
		target := layer.Target{
			Name:    account.Name,
			Address: account.Address,
			Valoper: account.Valoper,
		}

		m := monitor.New(monitor.Config{
			Name:     account.Name,
			LogPath:  logPath,
			Interval: cfg.GetInterval(),
			Cooldown: cfg.GetCooldown(),
		}, builder.ForAccount(target), appender)
		m.AddObserver(registry)
		m.AddObserver(board)

		board.Track(account.Name, logPath)
		monitors = append(monitors, m)
	}

	supervisor := monitor.NewSupervisor(monitors...)

	log.Info().
		Str("base_url", cfg.BaseURL).
		Str("output_dir", cfg.OutputDir).
		Int("accounts", len(cfg.Accounts)).
		Msg("Starting layerwatch")

	if once {
		return supervisor.RunOnce(context.Background())
	}

	// The ops server is constructed before anything starts so a busy port
	// is a startup error.
	var opsServer *ops.Server
	if cfg.Ops.Enabled {
		opsConfig := ops.DefaultConfig()
		opsConfig.Addr = cfg.Ops.ListenAddr()
		opsConfig.Version = version

		opsServer, err = ops.NewServer(opsConfig, board, registry)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return supervisor.Run(gctx)
	})
	if opsServer != nil {
		g.Go(func() error {
			return opsServer.Run(gctx)
		})
	}

	return g.Wait()
}

// loadConfig resolves the configuration the way every subcommand does:
// from the YAML file when --config is set, otherwise from the numbered
// environment slots, optionally seeded by a .env file.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	configPath, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load env file: %w", err)
			}
		} else {
			// Best effort, matching dotenv semantics: a missing ./.env
			// is not an error.
			_ = godotenv.Load()
		}
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	if outputDir, ferr := flags.GetString("output-dir"); ferr == nil && outputDir != "" {
		cfg.OutputDir = outputDir
	}

	return cfg, nil
}

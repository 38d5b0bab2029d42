package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"voiced/internal/catalog"
	"voiced/internal/config"
	"voiced/internal/gateway"
	"voiced/internal/httpapi"
	"voiced/internal/manager"
)

const version = "0.3.0"

func main() {
	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "voiced",
		Short:         "Local voice inference gateway (STT + TTS)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(buildServeCmd())
	root.AddCommand(buildCatalogCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the voiced version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "voiced", version)
		},
	})
	return root
}

func buildServeCmd() *cobra.Command {
	var (
		cfgPath     string
		addr        string
		catalogPath string
		preloadCSV  string
		logLevel    string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{}
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			// Flags override file values when set.
			if addr != "" {
				cfg.Addr = addr
			}
			if catalogPath != "" {
				cfg.CatalogPath = catalogPath
			}
			if preload := splitCSV(preloadCSV); len(preload) > 0 {
				cfg.Preload = preload
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to config file (.yaml/.json/.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8090")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the model catalog YAML")
	cmd.Flags().StringVar(&preloadCSV, "preload", "", "Comma-separated model ids to load at startup")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	return cmd
}

func runServe(cfg config.Config) error {
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = "catalog.yaml"
	}
	log := newLogger(cfg.LogLevel)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	mgr := manager.New(managerConfig(cfg, &log))
	mgr.SetPublisher(manager.NewLogPublisher(log))
	gw := gateway.New(cat, mgr, version)

	for _, id := range cfg.Preload {
		if err := gw.Load(id); err != nil {
			// A failed preload degrades health; it does not stop the gateway.
			log.Error().Err(err).Str("model", id).Msg("preload failed")
		}
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	if cfg.MaxBodyMB > 0 {
		httpapi.SetMaxAudioBytes(int64(cfg.MaxBodyMB) << 20)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(gw),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("catalog", cfg.CatalogPath).Msg("voiced listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM). A second signal is a no-op while
	// the first sequence runs.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	grace := time.Duration(cfg.GracePeriodSec) * time.Second
	if grace <= 0 {
		grace = 5 * time.Second
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	mgr.Shutdown(grace)
	return nil
}

func managerConfig(cfg config.Config, log *zerolog.Logger) manager.ManagerConfig {
	return manager.ManagerConfig{
		DefaultSTTModel: cfg.DefaultSTTModel,
		DefaultTTSModel: cfg.DefaultTTSModel,
		MaxQueueDepth:   cfg.MaxQueueDepth,
		MaxWait:         time.Duration(cfg.MaxWaitSec) * time.Second,
		MaxConcurrency:  cfg.MaxConcurrency,
		ProbeInterval:   time.Duration(cfg.ProbeIntervalSec) * time.Second,
		StartTimeout:    time.Duration(cfg.StartTimeoutSec) * time.Second,
		RestartMax:      cfg.RestartMax,
		GracePeriod:     time.Duration(cfg.GracePeriodSec) * time.Second,
		WorkerHost:      cfg.WorkerHost,
		WorkerPortStart: cfg.WorkerPortStart,
		WorkerPortEnd:   cfg.WorkerPortEnd,
		WorkerBinDir:    cfg.WorkerBinDir,
		Logger:          log,
	}
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		p := strings.TrimSpace(part)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

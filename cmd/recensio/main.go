package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ternarybob/recensio/internal/app"
	"github.com/ternarybob/recensio/internal/common"
	"github.com/ternarybob/recensio/internal/server"
)

// configPaths supports repeated -config flags.
type configPaths []string

func (c *configPaths) String() string {
	return strings.Join(*c, ",")
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func main() {
	// Load .env before anything reads the environment. Missing file is fine.
	_ = godotenv.Load()

	var configs configPaths
	flag.Var(&configs, "config", "Path to TOML config file (repeatable, later files override earlier)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	host := flag.String("host", "", "HTTP server host (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		os.Exit(0)
	}

	if len(configs) == 0 {
		configs = discoverConfigs()
	}

	config, err := common.LoadFromFiles(configs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, *port, *host)

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	srv := server.New(application)

	common.SafeGo(logger, "http-server", func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	})

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Msg("Recensio started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Recensio stopped")
}

// discoverConfigs returns the default config files that exist on disk.
func discoverConfigs() configPaths {
	var found configPaths
	for _, candidate := range []string{"recensio.toml", "deployments/local/recensio.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			found = append(found, candidate)
		}
	}
	return found
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohammed-shakir/busdata-gateway/internal/core/config"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/executor"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/health"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/httpclient"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/observability"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/server"
	"github.com/mohammed-shakir/busdata-gateway/internal/logger"
	"github.com/mohammed-shakir/busdata-gateway/internal/metrics"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	envFile := flag.String("env-file", os.Getenv("ENV_FILE"), "dotenv file loaded before reading the environment")
	addr := flag.String("addr", "", "HTTP listen address (overrides ADDR/PORT)")
	publicDir := flag.String("public", "", "static asset directory (overrides PUBLIC_DIR)")
	flag.Parse()

	// the logger does not exist yet; report after it does
	dotenvErr := config.LoadDotEnv(*envFile)

	cfg := config.FromEnv()
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *publicDir != "" {
		cfg.Static.PublicDir = *publicDir
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.Log.Level,
		Console:   cfg.Log.Console,
		SampleN:   cfg.Log.SampleN,
		Component: "gateway",
		Version:   Version,
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	if dotenvErr != nil {
		appLog.Warn("dotenv file not loaded", "err", dotenvErr)
	}
	if cfg.Upstream.APIKey == "" {
		appLog.Warn("API_KEY is empty; upstream requests will be rejected")
	}
	if cfg.Upstream.Timeout > 0 {
		appLog.Info("upstream timeout enabled", "timeout", cfg.Upstream.Timeout.String())
	}

	appLog.Info("starting gateway",
		"addr", cfg.Addr,
		"version", Version,
		"upstream", cfg.Upstream.BaseURL,
		"public_dir", cfg.Static.PublicDir)

	exec, err := executor.New(appLog, httpclient.NewOutbound(cfg.Upstream.Timeout), cfg.Upstream)
	if err != nil {
		appLog.Error("failed to initialize executor", "err", err)
		return 1
	}

	public := server.NewRouter(cfg, appLog, exec)

	var ops http.Handler
	if cfg.Metrics.Enabled {
		p := metrics.Init(metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		}, observability.Collectors()...)
		ops = server.NewOpsRouter(cfg.Metrics.Path, p.Handler(), apiKeyCheck(cfg))
		appLog.Info("metrics enabled", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, appLog, public, ops); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

func apiKeyCheck(cfg config.Config) health.Check {
	return health.Check{
		Name: "api_key",
		Fn: func() error {
			if cfg.Upstream.APIKey == "" {
				return errors.New("API_KEY is empty")
			}
			return nil
		},
	}
}

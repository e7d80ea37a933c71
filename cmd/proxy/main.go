package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/younwookim/hollowhouse/internal/infrastructure/config"
	"github.com/younwookim/hollowhouse/internal/infrastructure/logger"
	"github.com/younwookim/hollowhouse/internal/infrastructure/proxy"
	"github.com/younwookim/hollowhouse/internal/infrastructure/telemetry"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing config.yaml")
	listen := flag.String("listen", "", "Override proxy.listen")
	flag.Parse()

	cfg, err := config.LoadAppConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Proxy.Listen = *listen
	}

	zl, err := logger.New(cfg.Log.Development, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.New("hollowhouse_proxy", prometheus.NewRegistry())
	srv := proxy.New(proxy.Config{
		Listen:       cfg.Proxy.Listen,
		AllowOrigins: cfg.Proxy.AllowOrigins,
		BitcoinURL:   cfg.Proxy.BitcoinURL,
		BitcoinUser:  cfg.Proxy.BitcoinUser,
		BitcoinPass:  cfg.Proxy.BitcoinPass,
		LNDURL:       cfg.Proxy.LNDURL,
		LNDMacaroon:  cfg.Proxy.LNDMacaroon,
		Timeout:      cfg.Proxy.Timeout,
	}, metrics, zl)

	if err := srv.ListenAndServe(ctx); err != nil {
		zl.Fatalw("proxy stopped", "error", err)
	}
	zl.Infow("proxy stopped")
}

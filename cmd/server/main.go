package main

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/pos/config"
	"github.com/amirasaad/pos/infra/initializer"
	"github.com/amirasaad/pos/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadAppConfig(slog.Default(), ".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app := webapi.NewApp(deps.Sale, deps.Audit)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	deps.Logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Scheme,
	)

	return app.Listen(addr)
}

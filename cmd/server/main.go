package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"

	"github.com/remitflow/remitflow/app"
	"github.com/remitflow/remitflow/infra/chat"
	"github.com/remitflow/remitflow/infra/initializer"
	"github.com/remitflow/remitflow/pkg/config"
	"github.com/remitflow/remitflow/webapi"
)

func main() {
	if err := run(); err != nil {
		charmlog.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(slog.Default())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := initializer.SetupLogger(cfg.Log)
	slog.SetDefault(logger)

	// The real chat transport connects from outside; locally, outbound
	// messages go to the log.
	messenger := chat.NewLogMessenger(logger)

	application, err := app.New(cfg, messenger, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	fiberApp := webapi.SetupApp(application)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "env", cfg.Env, "address", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fiberApp.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		application.Shutdown()
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig)
		application.Shutdown()
		return fiberApp.Shutdown()
	}
}

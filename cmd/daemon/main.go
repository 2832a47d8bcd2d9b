package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/trackline/internal/command"
	"github.com/genricoloni/trackline/internal/config"
	"github.com/genricoloni/trackline/internal/coordinator"
	"github.com/genricoloni/trackline/internal/emitter"
	"github.com/genricoloni/trackline/internal/player"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the full dependency graph, exported so tests can validate it
var AppOptions = fx.Options(
	// Logger configuration
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	// Provide dependencies
	fx.Provide(
		newLogger,
		newDBusClient,
		newEmitterConfig,
		player.NewRegistry,
		player.NewSelector,
		player.NewGate,
		newEmitter,
		newCommandReader,
		coordinator.New,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(AppOptions)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance.
// Production config logs to stderr; stdout carries only caption lines.
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newDBusClient connects to the session bus
func newDBusClient() (player.DBusClient, error) {
	return player.NewStdDBusClient()
}

// newEmitterConfig adapts the app config to the emitter's view of it
func newEmitterConfig(logger *zap.Logger) emitter.Config {
	return config.NewAppConfig(logger)
}

// newEmitter wires the caption emitter to stdout
func newEmitter(logger *zap.Logger, cfg emitter.Config, selector *player.Selector) *emitter.Emitter {
	return emitter.New(logger, cfg, selector, os.Stdout)
}

// newCommandReader wires the click-event reader to stdin
func newCommandReader(logger *zap.Logger, selector *player.Selector) *command.Reader {
	return command.NewReader(logger, selector, os.Stdin)
}

// registerHooks binds the coordinator to the application lifecycle
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, coord *coordinator.Coordinator) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Trackline daemon started")
			return coord.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return coord.Stop(ctx)
		},
	})
}

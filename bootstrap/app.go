package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/authgate/component"
	"github.com/kbukum/authgate/logger"
)

// DefaultGracefulTimeout bounds shutdown when WithGracefulTimeout is not given.
const DefaultGracefulTimeout = 15 * time.Second

// App owns the component registry and drives start, wait and stop.
type App struct {
	Name       string
	Version    string
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onReady         []Hook
	onStop          []Hook
}

// New creates an application. Components are registered afterwards with
// Register, dependencies first.
func New(name, version string, opts ...Option) *App {
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	timeout := o.gracefulTimeout
	if timeout <= 0 {
		timeout = DefaultGracefulTimeout
	}

	app := &App{
		Name:            name,
		Version:         version,
		Components:      component.NewRegistry(log),
		Logger:          log.WithComponent("bootstrap"),
		Summary:         NewSummary(name, version),
		gracefulTimeout: timeout,
	}
	if o.summaryOut != nil {
		app.Summary.out = o.summaryOut
	}
	return app
}

// Register adds components to the registry in start order.
func (a *App) Register(components ...component.Component) error {
	for _, c := range components {
		if err := a.Components.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ReadyCheck reports an error naming every component that is not healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		unhealthy = append(unhealthy, h.String())
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(unhealthy, ", "))
	}
	return nil
}

// Run starts every component, blocks until a shutdown signal or ctx is done,
// then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.Shutdown()
}

// Start starts the components, runs the ready check and OnReady hooks, and
// prints the summary. When a component fails to start, the ones already
// started have been stopped by the time Start returns.
func (a *App) Start(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		if stopErr := a.Shutdown(); stopErr != nil {
			a.Logger.Error("Shutdown after failed start", map[string]interface{}{
				logger.FieldError: stopErr.Error(),
			})
		}
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Display(ctx, a.Components)
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or context cancellation. It
// returns the signal received, or nil when ctx ended the wait.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the OnStop hooks and stops all started components in reverse
// order, within the graceful timeout.
func (a *App) Shutdown() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}

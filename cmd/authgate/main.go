// Command authgate serves the registration and login API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/authgate/auth/bearer"
	"github.com/kbukum/authgate/auth/password"
	"github.com/kbukum/authgate/auth/token"
	"github.com/kbukum/authgate/bootstrap"
	"github.com/kbukum/authgate/config"
	"github.com/kbukum/authgate/flow"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/observability"
	"github.com/kbukum/authgate/server"
	"github.com/kbukum/authgate/server/handler"
	"github.com/kbukum/authgate/server/middleware"
	"github.com/kbukum/authgate/store"
	"github.com/kbukum/authgate/version"

	_ "github.com/kbukum/authgate/store/gormstore"
	_ "github.com/kbukum/authgate/store/redisstore"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "authgate: %v\n", err)
		os.Exit(1)
	}
}

// serve loads the configuration and runs the gateway until a shutdown signal.
func serve(ctx context.Context, opts []config.LoaderOption) error {
	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(&cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("authgate starting", map[string]interface{}{
		"build":       version.Get().String(),
		"environment": cfg.Environment,
	})

	app, err := build(cfg, log)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

// build wires the components in start order: store, observability, then the
// HTTP server that depends on both.
func build(cfg *config.Config, log *logger.Logger) (*bootstrap.App, error) {
	secrets := cfg.Auth.SecretProvider()
	if secrets.IsDefault() {
		log.Warn("Using the built-in development signing secret; set JWT_SECRET", map[string]interface{}{
			"environment": cfg.Environment,
		})
	}

	issuer, err := token.NewIssuer(cfg.Auth.Token, secrets)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	verifier, err := token.NewVerifier(cfg.Auth.Token, secrets)
	if err != nil {
		return nil, fmt.Errorf("token verifier: %w", err)
	}

	storeComp := store.NewComponent(cfg.Store, log)
	obsComp := observability.NewComponent(cfg.Observability, log)

	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	svc, err := flow.New(cfg.Flow, storeComp, password.NewHasher(cfg.Auth.Password), issuer, log,
		flow.WithMeter(observability.Meter(observability.InstrumentationName)))
	if err != nil {
		return nil, fmt.Errorf("flow: %w", err)
	}

	app := bootstrap.New(cfg.Name, cfg.Version, bootstrap.WithLogger(log))

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(metrics)
	srv.RegisterDefaultEndpoints(cfg.Name, cfg.Version, app.Components.HealthAll)
	handler.Register(srv.GinEngine(), handler.Deps{
		Flow:  svc,
		Users: storeComp,
		Gate:  middleware.Gate(bearer.NewParser(cfg.Auth.Header), verifier, log),
		Log:   log,
	})

	if err := app.Register(storeComp, obsComp, server.NewComponent(srv)); err != nil {
		return nil, err
	}

	log.Info("Authentication configured", map[string]interface{}{
		"auth":   cfg.Auth.Describe(),
		"secret": secrets.String(),
	})
	return app, nil
}

// Package bootstrap runs the authgate process lifecycle.
//
// An App starts registered components in order, prints a startup summary,
// blocks until SIGINT, SIGTERM or context cancellation, then stops the
// components in reverse order within a graceful timeout.
//
//	app := bootstrap.New(cfg.Name, cfg.Version, bootstrap.WithLogger(log))
//	app.Register(storeComp, obsComp, serverComp)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err.Error())
//	}
package bootstrap

// Package server provides the authgate HTTP server: a gin engine served over
// HTTP/1.1 and h2c, wrapped as a lifecycle component.
//
// Middleware lives in server/middleware (recovery, request IDs, logging,
// metrics, body limits and the authentication Gate), the operational
// endpoints in server/endpoint and the API routes in server/handler.
//
//	srv := server.New(cfg.Server, log)
//	srv.ApplyMiddleware(metrics)
//	srv.RegisterDefaultEndpoints("authgate", version, registry.HealthAll)
//	handler.Register(srv.GinEngine(), deps)
package server

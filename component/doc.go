// Package component defines lifecycle-managed infrastructure pieces of the
// gateway: the credential store backends and the HTTP server.
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse. Their Health is reported on the /health endpoint.
package component

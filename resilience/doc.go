// Package resilience retries transient failures with capped exponential
// backoff. The store backends use it to connect at startup.
//
//	err := resilience.RetryFunc(ctx, resilience.RetryConfig{MaxAttempts: 3}, db.Ping)
package resilience

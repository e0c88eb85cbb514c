// Package logger provides structured logging for authgate using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Fields are passed as
// maps so call sites stay terse:
//
//	log := logger.NewDefault("authgate").WithComponent("flow")
//	log.Info("user registered", logger.Fields("username", name))
//
// Plaintext passwords, password hashes, signing secrets and raw tokens must
// never be passed as fields.
package logger

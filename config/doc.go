// Package config loads the authgate configuration.
//
// Values come from a config.yml found in the usual locations, then from
// the process environment and an optional .env file. Every environment
// variable is bound under several nested key spellings, so AUTH_TOKEN_LIFETIME
// reaches auth.token.lifetime. A few well-known variables are also bound
// under fixed aliases, JWT_SECRET to auth.secret for example.
//
//	cfg, err := config.Load()
package config

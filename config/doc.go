// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml over built-in Metro-North defaults
// and validated using struct tags. The feed API key is read from the
// environment variable named by feed.apiKeyEnv, after loading a .env file
// when one is present.
package config

// Package config loads the layered runtime configuration for
// cmd/retrievalctl and internal/mcpserver: defaults, overridden by the
// environment switches spec.md §6 names, via github.com/spf13/viper.
package config

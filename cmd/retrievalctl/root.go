package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gocontext/retrieval/internal/config"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "retrievalctl",
	Short: "retrievalctl drives the repository-scale retrieval engine",
	Long: `retrievalctl builds a project's code graph, resolves a change request
to the files it touches, and packs a dependency-aware context bundle for a
coding assistant, widening its search automatically when an evaluation pass
finds the first attempt too narrow.`,
	Version: fmt.Sprintf("%s (built %s)", version, buildTime),
}

func init() {
	rootCmd.SetVersionTemplate("retrievalctl version {{.Version}}\n")
}

func loadConfig() *config.Config {
	cfg, overrides, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "retrievalctl: config load failed: %v\n", err)
		os.Exit(1)
	}
	for _, o := range overrides {
		fmt.Fprintf(os.Stderr, "retrievalctl: %s overrides %s\n", o.EnvVar, o.Path)
	}
	return cfg
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "retrievalctl: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

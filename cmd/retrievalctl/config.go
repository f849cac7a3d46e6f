package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gocontext/retrieval/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the layered configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration and which environment variables overrode it",
	RunE:  runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List the recognised environment variable switches",
	Run:   runConfigEnv,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, overrides, err := config.Load()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	if len(overrides) == 0 {
		fmt.Println("\nno environment overrides applied")
		return nil
	}
	fmt.Println("\nenvironment overrides:")
	for _, o := range overrides {
		fmt.Printf("  %s -> %s = %s\n", o.EnvVar, o.Path, o.FromValue)
	}
	return nil
}

func runConfigEnv(cmd *cobra.Command, args []string) {
	for _, v := range config.EnvVars() {
		fmt.Fprintln(os.Stdout, v)
	}
}

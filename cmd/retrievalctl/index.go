package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var indexForceRebuild bool

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Build or refresh the code graph for a project root",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForceRebuild, "force", false, "rebuild from source even if a cached graph exists")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := resolveRoot(args[0])
	cfg := loadConfig()

	p, err := openProject(context.Background(), cfg, root, indexForceRebuild)
	if err != nil {
		return err
	}
	defer p.Close()

	g := p.manager.GetGraph()
	fmt.Printf("indexed %s: %d nodes, %d edges\n", root, len(g.GetAllNodes()), len(g.GetAllEdges()))
	return nil
}

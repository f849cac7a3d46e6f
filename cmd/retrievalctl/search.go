package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gocontext/retrieval/internal/crossencoder"
	"github.com/gocontext/retrieval/internal/resolver"
)

var searchRecentPaths []string

var searchCmd = &cobra.Command{
	Use:   "search <path> <query>",
	Short: "Resolve a query to ranked candidate files without building a context bundle",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchRecentPaths, "recent", nil, "recently-touched paths to bias resolution toward")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	root := resolveRoot(args[0])
	query := args[1]
	cfg := loadConfig()
	ctx := context.Background()

	p, err := openProject(ctx, cfg, root, false)
	if err != nil {
		return err
	}
	defer p.Close()

	g := p.manager.GetGraph()

	var cross crossencoder.CrossEncoder
	if cfg.CrossEncoderEnabled {
		cross = crossencoder.Heuristic{}
	}
	embed, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	res, err := resolver.New(ctx, g, embed, cross)
	if err != nil {
		return fmt.Errorf("build resolver: %w", err)
	}

	resolution, err := res.Resolve(ctx, query, resolver.Options{RecentPaths: searchRecentPaths})
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	for i, c := range resolution.Candidates {
		fmt.Printf("%2d. %-60s score=%.3f semantic=%.3f lexical=%.3f structural=%.3f\n",
			i+1, c.Path, c.Score, c.Semantic, c.Lexical, c.Structural)
		if len(c.Reasons) > 0 {
			fmt.Printf("      reasons: %v\n", c.Reasons)
		}
	}
	return nil
}

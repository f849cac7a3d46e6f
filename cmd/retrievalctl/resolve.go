package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gocontext/retrieval/internal/crossencoder"
	"github.com/gocontext/retrieval/internal/resolver"
	"github.com/gocontext/retrieval/internal/retriever"
)

var (
	resolveTargetPath string
	resolveTokenBudget int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path> <query>",
	Short: "Pack a dependency-aware context bundle for a query in a single pass, skipping evaluation",
	Args:  cobra.ExactArgs(2),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveTargetPath, "target", "", "known edit target, bypassing resolution")
	resolveCmd.Flags().IntVar(&resolveTokenBudget, "token-budget", 6000, "token budget for the packed context")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
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
	resolution, err := res.Resolve(ctx, query, resolver.Options{})
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	ret := retriever.New(g, embed)
	dc, err := ret.Build(ctx, query, resolution, retriever.Options{
		TargetPath:  resolveTargetPath,
		TokenBudget: resolveTokenBudget,
	})
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	fmt.Println(dc.Formatted)
	fmt.Printf("\n--- tokens used: %d, saved: %d ---\n", dc.TokensUsed, dc.TokensSaved)
	return nil
}

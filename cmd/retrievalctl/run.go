package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gocontext/retrieval/internal/pipeline"
	"github.com/gocontext/retrieval/pkg/types"
)

var (
	runTargetPath  string
	runRecentPaths []string
	runGroundTruth []string
)

var runCmd = &cobra.Command{
	Use:   "run <path> <query>",
	Short: "Run the full resolve/build/evaluate pipeline, widening automatically on a failing pass",
	Args:  cobra.ExactArgs(2),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runTargetPath, "target", "", "known edit target, bypassing resolution")
	runCmd.Flags().StringSliceVar(&runRecentPaths, "recent", nil, "recently-touched paths to bias resolution toward")
	runCmd.Flags().StringSliceVar(&runGroundTruth, "ground-truth", nil, "known-correct file paths, for evaluation")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	root := resolveRoot(args[0])
	query := args[1]
	cfg := loadConfig()
	ctx := context.Background()

	p, err := openProject(ctx, cfg, root, false)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.pipeline.Run(ctx, pipeline.Request{
		Query:       query,
		TargetPath:  runTargetPath,
		RecentPaths: runRecentPaths,
		GroundTruth: runGroundTruth,
		EvalConfig:  types.DefaultEvaluationConfig(),
	})
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Println(result.Context.Formatted)
	fmt.Printf("\n--- iterations: %d, pass: %v, precision: %.2f, recall: %.2f, coverage: %.2f ---\n",
		result.Iterations, result.Evaluation.Pass, result.Evaluation.Precision, result.Evaluation.Recall, result.Evaluation.Coverage)
	fmt.Printf("--- trace: %v ---\n", result.Trace.NodeNames())
	return nil
}

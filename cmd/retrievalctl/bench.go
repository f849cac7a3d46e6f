package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gocontext/retrieval/internal/bench"
	"github.com/gocontext/retrieval/internal/pipeline"
	"github.com/gocontext/retrieval/pkg/types"
)

var benchOutDir string

var benchCmd = &cobra.Command{
	Use:   "bench <path> <dataset.json>",
	Short: "Run a benchmark dataset through the pipeline and write a markdown report",
	Args:  cobra.ExactArgs(2),
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchOutDir, "out", ".", "directory to write the .benchmark-artifacts report under")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	root := resolveRoot(args[0])
	datasetPath := args[1]
	cfg := loadConfig()
	ctx := context.Background()

	ds, err := bench.LoadDataset(datasetPath)
	if err != nil {
		return err
	}

	p, err := openProject(ctx, cfg, root, false)
	if err != nil {
		return err
	}
	defer p.Close()

	report := &bench.Report{Dataset: ds, Timestamp: time.Now()}
	for _, task := range ds.Tasks {
		result, err := p.pipeline.Run(ctx, pipeline.Request{
			Query:       task.Query,
			TargetPath:  task.TargetFilePath,
			RecentPaths: task.CandidateFilePaths,
			GroundTruth: task.GroundTruth,
			EvalConfig:  types.DefaultEvaluationConfig(),
		})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "retrievalctl: task %s failed: %v\n", task.ID, err)
			continue
		}
		report.Results = append(report.Results, bench.TaskResult{
			Task:       task,
			Evaluation: result.Evaluation,
			Iterations: result.Iterations,
		})
	}

	path, err := report.Write(benchOutDir)
	if err != nil {
		return err
	}
	fmt.Printf("report written to %s\n", path)
	return nil
}

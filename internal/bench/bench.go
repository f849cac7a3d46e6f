package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocontext/retrieval/pkg/types"
)

// Task is one benchmark case: a query, its ground-truth path set, and the
// optional hints the spec's Target Resolver/Retriever accept directly.
type Task struct {
	ID                 string   `json:"id"`
	Query              string   `json:"query"`
	GroundTruth        []string `json:"groundTruth"`
	TargetFilePath     string   `json:"targetFilePath,omitempty"`
	CandidateFilePaths []string `json:"candidateFilePaths,omitempty"`
}

// Dataset is a named family/variant collection of Tasks.
type Dataset struct {
	Name    string `json:"name"`
	Family  string `json:"family"`
	Variant string `json:"variant"`
	Tasks   []Task `json:"tasks"`
}

// LoadDataset reads and validates a benchmark dataset from path.
func LoadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bench: read dataset: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("bench: parse dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate reports a ConfigurationError-class problem: missing ground
// truth or a malformed task.
func (d *Dataset) Validate() error {
	if d.Name == "" || d.Family == "" {
		return fmt.Errorf("bench: dataset missing name or family")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("bench: dataset %q has no tasks", d.Name)
	}
	for _, t := range d.Tasks {
		if t.ID == "" || t.Query == "" {
			return fmt.Errorf("bench: task missing id or query in dataset %q", d.Name)
		}
		if len(t.GroundTruth) == 0 {
			return fmt.Errorf("bench: task %q has no groundTruth", t.ID)
		}
	}
	return nil
}

// TaskResult pairs one Task with the pipeline.Result its query produced.
type TaskResult struct {
	Task       Task
	Evaluation types.Evaluation
	Iterations int
}

// Report is the rendered outcome of running every Task in a Dataset
// through the pipeline.
type Report struct {
	Dataset   *Dataset
	Results   []TaskResult
	Timestamp time.Time
}

// Aggregate computes the mean precision/recall/coverage and overall pass
// rate across every task result.
func (r *Report) Aggregate() (meanPrecision, meanRecall, meanCoverage, passRate float64) {
	n := float64(len(r.Results))
	if n == 0 {
		return 0, 0, 0, 0
	}
	var passed int
	for _, res := range r.Results {
		meanPrecision += res.Evaluation.Precision
		meanRecall += res.Evaluation.Recall
		meanCoverage += res.Evaluation.Coverage
		if res.Evaluation.Pass {
			passed++
		}
	}
	return meanPrecision / n, meanRecall / n, meanCoverage / n, float64(passed) / n
}

// ReportFileName matches spec.md §6's "<family>-<variant>-<ts>.md" convention.
func (r *Report) ReportFileName() string {
	return fmt.Sprintf("%s-%s-%d.md", r.Dataset.Family, r.Dataset.Variant, r.Timestamp.Unix())
}

// Render produces the markdown report body: an aggregate table followed by
// one section per task.
func (r *Report) Render() string {
	var b strings.Builder
	meanP, meanR, meanC, passRate := r.Aggregate()

	fmt.Fprintf(&b, "# %s / %s benchmark report\n\n", r.Dataset.Family, r.Dataset.Variant)
	fmt.Fprintf(&b, "Generated %s\n\n", r.Timestamp.Format(time.RFC3339))

	b.WriteString("| metric | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| tasks | %d |\n", len(r.Results))
	fmt.Fprintf(&b, "| pass rate | %.2f |\n", passRate)
	fmt.Fprintf(&b, "| mean precision | %.2f |\n", meanP)
	fmt.Fprintf(&b, "| mean recall | %.2f |\n", meanR)
	fmt.Fprintf(&b, "| mean coverage | %.2f |\n\n", meanC)

	for _, res := range r.Results {
		fmt.Fprintf(&b, "## %s\n\n", res.Task.ID)
		fmt.Fprintf(&b, "- query: %s\n", res.Task.Query)
		fmt.Fprintf(&b, "- pass: %v\n", res.Evaluation.Pass)
		fmt.Fprintf(&b, "- precision: %.2f, recall: %.2f, coverage: %.2f\n", res.Evaluation.Precision, res.Evaluation.Recall, res.Evaluation.Coverage)
		fmt.Fprintf(&b, "- iterations: %d\n", res.Iterations)
		if len(res.Evaluation.Actions) > 0 {
			fmt.Fprintf(&b, "- widening actions: %v\n", res.Evaluation.Actions)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Write renders the report and writes it under dir/.benchmark-artifacts/,
// creating the directory if needed, and returns the file path written.
func (r *Report) Write(dir string) (string, error) {
	artifactDir := filepath.Join(dir, ".benchmark-artifacts")
	if err := os.MkdirAll(artifactDir, 0o755); err != nil {
		return "", fmt.Errorf("bench: create artifact dir: %w", err)
	}
	path := filepath.Join(artifactDir, r.ReportFileName())
	if err := os.WriteFile(path, []byte(r.Render()), 0o644); err != nil {
		return "", fmt.Errorf("bench: write report: %w", err)
	}
	return path, nil
}

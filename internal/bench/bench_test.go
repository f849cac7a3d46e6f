package bench

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocontext/retrieval/pkg/types"
)

func writeDatasetFile(t *testing.T, ds Dataset) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.json")
	raw, err := json.Marshal(ds)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestLoadDatasetRoundTrips(t *testing.T) {
	ds := Dataset{
		Name: "auth-suite", Family: "auth", Variant: "small",
		Tasks: []Task{{ID: "t1", Query: "refactor auth", GroundTruth: []string{"src/auth.ts"}}},
	}
	path := writeDatasetFile(t, ds)

	loaded, err := LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "auth-suite", loaded.Name)
	assert.Len(t, loaded.Tasks, 1)
}

func TestLoadDatasetRejectsMissingGroundTruth(t *testing.T) {
	ds := Dataset{
		Name: "x", Family: "x", Variant: "v",
		Tasks: []Task{{ID: "t1", Query: "q"}},
	}
	path := writeDatasetFile(t, ds)

	_, err := LoadDataset(path)
	assert.Error(t, err)
}

func TestReportAggregateAndRender(t *testing.T) {
	r := &Report{
		Dataset: &Dataset{Family: "auth", Variant: "small"},
		Results: []TaskResult{
			{Task: Task{ID: "t1", Query: "q1"}, Evaluation: types.Evaluation{Pass: true, Precision: 1, Recall: 1, Coverage: 1}, Iterations: 1},
			{Task: Task{ID: "t2", Query: "q2"}, Evaluation: types.Evaluation{Pass: false, Precision: 0, Recall: 0, Coverage: 0}, Iterations: 2},
		},
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}

	meanP, meanR, meanC, passRate := r.Aggregate()
	assert.Equal(t, 0.5, meanP)
	assert.Equal(t, 0.5, meanR)
	assert.Equal(t, 0.5, meanC)
	assert.Equal(t, 0.5, passRate)

	body := r.Render()
	assert.Contains(t, body, "auth / small")
	assert.Contains(t, body, "t1")
	assert.Contains(t, body, "t2")
}

func TestReportWriteCreatesArtifactDir(t *testing.T) {
	dir := t.TempDir()
	r := &Report{
		Dataset:   &Dataset{Family: "auth", Variant: "small"},
		Results:   []TaskResult{{Task: Task{ID: "t1"}, Evaluation: types.Evaluation{Pass: true}}},
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}

	path, err := r.Write(dir)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, ".benchmark-artifacts")
}

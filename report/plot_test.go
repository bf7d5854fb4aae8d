package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionPlotWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "pred.png")
	err := PredictionPlot([]float64{1e6, 2e6, 1.5e6}, []float64{1.1e6, 1.9e6, 1.4e6}, path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPredictionPlotValidation(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, PredictionPlot(nil, nil, filepath.Join(dir, "a.png")))
	assert.Error(t, PredictionPlot([]float64{1}, []float64{1, 2}, filepath.Join(dir, "b.png")))
}

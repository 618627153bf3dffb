package selector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbmod/kbmod/internal/search"
)

func sampleTrajectories() []search.Trajectory {
	return []search.Trajectory{
		{X: 1, Y: 1, Lh: 100, Flux: 10, ObsCount: 5},
		{X: 2, Y: 2, Lh: 80, Flux: 8, ObsCount: 5},
		{X: 3, Y: 3, Lh: 60, Flux: 6, ObsCount: 5},
		{X: 4, Y: 4, Lh: 40, Flux: 4, ObsCount: 5},
	}
}

func TestGetResultsPages(t *testing.T) {
	s := New(sampleTrajectories())
	assert.Len(t, s.GetResults(0, 2), 2)
	assert.Equal(t, 1, s.GetResults(0, 2)[0].X)
	assert.Len(t, s.GetResults(2, 10), 2)
	assert.Nil(t, s.GetResults(100, 2))
}

func TestGetResultsNegativeOffsetClampsToZero(t *testing.T) {
	s := New(sampleTrajectories())
	assert.Equal(t, s.GetResults(0, 1), s.GetResults(-5, 1))
}

func TestSaveResultsClampsFraction(t *testing.T) {
	s := New(sampleTrajectories())
	dir := t.TempDir()

	path := filepath.Join(dir, "over.txt")
	require.NoError(t, s.SaveResults(path, 5.0))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, splitLines(data), 4)

	path2 := filepath.Join(dir, "under.txt")
	require.NoError(t, s.SaveResults(path2, -1.0))
	data2, err := os.ReadFile(path2)
	require.NoError(t, err)
	assert.Empty(t, splitLines(data2))
}

func TestSaveResultsHalfFraction(t *testing.T) {
	s := New(sampleTrajectories())
	dir := t.TempDir()
	path := filepath.Join(dir, "half.txt")
	require.NoError(t, s.SaveResults(path, 0.5))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, splitLines(data), 2)
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, string(data[start:i]))
			}
			start = i + 1
		}
	}
	return lines
}

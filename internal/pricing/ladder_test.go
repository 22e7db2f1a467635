package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

func writeLadder(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadLadder(t *testing.T) {
	path := writeLadder(t, `
ladder:
  stages:
    - name: sold_relaxed
      min_count: 8
    - name: active
      disabled: true
`)
	cfg, err := LoadLadder(path)
	require.NoError(t, err)

	strict, ok := cfg.Stage(model.StageSoldStrict)
	require.True(t, ok)
	assert.Equal(t, DefaultSoldStrictMin, strict.MinCount)

	relaxed, _ := cfg.Stage(model.StageSoldRelaxed)
	assert.Equal(t, 8, relaxed.MinCount)

	active, _ := cfg.Stage(model.StageActive)
	assert.True(t, active.Disabled)
	assert.Equal(t, DefaultActiveMin, active.MinCount)

	names := make([]model.Stage, 0, len(cfg.Stages))
	for _, s := range cfg.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, model.AllStages(), names)
}

func TestLoadLadder_UnknownStage(t *testing.T) {
	_, err := LoadLadder(writeLadder(t, "ladder:\n  stages:\n    - name: auction\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ladder stage")
}

func TestLoadLadder_NegativeThreshold(t *testing.T) {
	_, err := LoadLadder(writeLadder(t, "ladder:\n  stages:\n    - name: active\n      min_count: -1\n"))
	require.Error(t, err)
}

func TestLoadLadder_Errors(t *testing.T) {
	_, err := LoadLadder(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadLadder(writeLadder(t, "ladder: [unclosed"))
	require.Error(t, err)
}

func TestDefaultLadder(t *testing.T) {
	cfg := DefaultLadder()
	_, ok := cfg.Stage(model.StageNone)
	assert.False(t, ok)
	require.Len(t, cfg.Stages, 3)
	assert.Equal(t, 10, cfg.Stages[0].MinCount)
	assert.Equal(t, 6, cfg.Stages[1].MinCount)
	assert.Equal(t, 10, cfg.Stages[2].MinCount)
}

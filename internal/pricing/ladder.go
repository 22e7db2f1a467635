package pricing

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

// Default acceptance thresholds per stage.
const (
	DefaultSoldStrictMin  = 10
	DefaultSoldRelaxedMin = 6
	DefaultActiveMin      = 10
)

// StageConfig tunes one ladder stage.
type StageConfig struct {
	Name     model.Stage `yaml:"name"`
	MinCount int         `yaml:"min_count"`
	Disabled bool        `yaml:"disabled"`
}

// LadderConfig is the stage policy of the pricer.
type LadderConfig struct {
	Stages []StageConfig `yaml:"stages"`
}

// DefaultLadder returns the standard three-stage policy.
func DefaultLadder() LadderConfig {
	return LadderConfig{Stages: []StageConfig{
		{Name: model.StageSoldStrict, MinCount: DefaultSoldStrictMin},
		{Name: model.StageSoldRelaxed, MinCount: DefaultSoldRelaxedMin},
		{Name: model.StageActive, MinCount: DefaultActiveMin},
	}}
}

// LoadLadder reads a ladder policy from a YAML file with a top-level
// "ladder" key. Stages missing from the file keep their defaults and a zero
// min_count falls back to the default threshold. Stage order is fixed.
func LoadLadder(path string) (LadderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LadderConfig{}, eris.Wrapf(err, "pricing: read ladder %s", path)
	}

	var wrapper struct {
		Ladder LadderConfig `yaml:"ladder"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return LadderConfig{}, eris.Wrap(err, "pricing: parse ladder")
	}

	cfg := DefaultLadder()
	for _, sc := range wrapper.Ladder.Stages {
		i := cfg.index(sc.Name)
		if i < 0 {
			return LadderConfig{}, eris.Errorf("pricing: unknown ladder stage %q", sc.Name)
		}
		if sc.MinCount < 0 {
			return LadderConfig{}, eris.Errorf("pricing: stage %s has negative min_count", sc.Name)
		}
		if sc.MinCount > 0 {
			cfg.Stages[i].MinCount = sc.MinCount
		}
		cfg.Stages[i].Disabled = sc.Disabled
	}
	return cfg, nil
}

// Stage returns the config for name, or false when name is not a stage.
func (c LadderConfig) Stage(name model.Stage) (StageConfig, bool) {
	if i := c.index(name); i >= 0 {
		return c.Stages[i], true
	}
	return StageConfig{}, false
}

func (c LadderConfig) index(name model.Stage) int {
	for i, s := range c.Stages {
		if s.Name == name {
			return i
		}
	}
	return -1
}

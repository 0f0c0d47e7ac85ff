// Package config loads the engine's tunable settings and its small
// persisted runtime state: github.com/ejoffe/rake populates a struct
// from a YAML file plus environment variables, driven entirely by
// `yaml`/`default` struct tags.
package config

import (
	"github.com/ejoffe/rake"
)

// Policy selects how often the engine ticks.
type Policy string

const (
	PolicyOnce   Policy = "once"
	PolicyRepeat Policy = "repeat"
)

// Engine holds the engine's tunable inputs: which Hub token to
// authenticate with, which two Store branches to bridge, whether to run
// once or forever, and whether Hub writes are suppressed.
type Engine struct {
	Policy      Policy `yaml:"policy" default:"repeat"`
	DryUpdates  bool   `yaml:"dry_updates" default:"false"`
	Token       string `yaml:"token"`
	PubBranch   string `yaml:"pub_branch" default:"pub"`
	PrivBranch  string `yaml:"priv_branch" default:"priv"`
	Verbose     bool   `yaml:"verbose" default:"false"`
	StateFile   string `yaml:"state_file" default:".hubstore/state.yaml"`
}

// State is small persisted runtime state carried between engine
// restarts.
type State struct {
	LastPrunedAt string `yaml:"last_pruned_at"`
}

// EmptyEngine returns an Engine with every field at its Go zero value,
// bypassing rake defaults entirely.
func EmptyEngine() *Engine {
	return &Engine{}
}

// DefaultEngine returns an Engine populated purely from the `default`
// struct tags, with no YAML file or environment overrides applied.
func DefaultEngine() *Engine {
	cfg := &Engine{}
	rake.LoadSources(cfg)
	return cfg
}

// Load populates cfg from yamlPath (if it exists) and environment
// variables, in that precedence order, via rake.LoadSources.
func Load(yamlPath string) (*Engine, error) {
	cfg := &Engine{}
	err := rake.LoadSources(cfg,
		rake.YamlFileReader(yamlPath),
		rake.OSEnvReader(),
	)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadState reads persisted runtime state from path, returning a zero
// State if the file doesn't exist yet.
func LoadState(path string) (*State, error) {
	st := &State{}
	if err := rake.LoadSources(st, rake.YamlFileReader(path)); err != nil {
		return nil, err
	}
	return st, nil
}

// SaveState persists st to path via rake.YamlFileWriter, the same
// writer used to flush runtime state back to disk after a run.
func SaveState(st *State, path string) error {
	return rake.LoadSources(st, rake.YamlFileWriter(path))
}

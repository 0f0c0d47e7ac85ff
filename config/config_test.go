package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyEngine(t *testing.T) {
	expect := &Engine{}
	actual := EmptyEngine()
	assert.Equal(t, expect, actual)
}

func TestDefaultEngine(t *testing.T) {
	expect := &Engine{
		Policy:     PolicyRepeat,
		DryUpdates: false,
		PubBranch:  "pub",
		PrivBranch: "priv",
		Verbose:    false,
		StateFile:  ".hubstore/state.yaml",
	}
	actual := DefaultEngine()
	assert.Equal(t, expect, actual)
}

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load("/nonexistent/hubstore.yaml")
	assert.NoError(t, err)
	assert.Equal(t, PolicyRepeat, cfg.Policy)
	assert.Equal(t, "pub", cfg.PubBranch)
	assert.Equal(t, "priv", cfg.PrivBranch)
}

func TestSaveAndLoadStateRoundTrips(t *testing.T) {
	path := t.TempDir() + "/state.yaml"

	assert.NoError(t, SaveState(&State{LastPrunedAt: "2026-07-30T00:00:00Z"}, path))

	st, err := LoadState(path)
	assert.NoError(t, err)
	assert.Equal(t, "2026-07-30T00:00:00Z", st.LastPrunedAt)
}

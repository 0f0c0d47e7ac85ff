package maputils_test

import (
	"testing"

	"github.com/nexusbridge/hubstore/internal/maputils"
	"github.com/stretchr/testify/require"
)

func TestGCUnaccessed(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2, "c": 3}
	gc := maputils.NewGC(m)

	v, ok := gc.Lookup("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	gc.Lookup("c")

	unaccessed := gc.GetUnaccessed()
	require.ElementsMatch(t, []int{2}, unaccessed)
}

func TestGCMissingKey(t *testing.T) {
	gc := maputils.NewGC(map[string]int{"a": 1})
	_, ok := gc.Lookup("missing")
	require.False(t, ok)
}

package concurrent_test

import (
	"errors"
	"testing"

	"github.com/nexusbridge/hubstore/internal/concurrent"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	in := []int{1, 2, 3}
	out, err := concurrent.Map(in, func(i int) (int, error) {
		return i + 1, nil
	})

	require.NoError(t, err)
	require.ElementsMatch(t, []int{2, 3, 4}, out)
}

func TestMapPropagatesError(t *testing.T) {
	in := []int{1, 2, 3}
	boom := errors.New("boom")
	_, err := concurrent.Map(in, func(i int) (int, error) {
		if i == 2 {
			return 0, boom
		}
		return i, nil
	})

	require.ErrorIs(t, err, boom)
}

func TestMapTolerantKeepsEveryItem(t *testing.T) {
	in := []int{1, 2, 3}
	boom := errors.New("boom")
	out := concurrent.MapTolerant(in, func(i int) (int, error) {
		if i == 2 {
			return 0, boom
		}
		return i * 10, nil
	})

	require.Len(t, out, 3)
	var failed, ok int
	for _, item := range out {
		if item.Err != nil {
			failed++
			require.ErrorIs(t, item.Err, boom)
		} else {
			ok++
			require.Equal(t, item.In*10, item.Out)
		}
	}
	require.Equal(t, 1, failed)
	require.Equal(t, 2, ok)
}

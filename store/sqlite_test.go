package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"git.fiblab.net/sim/metro/router"
	"git.fiblab.net/sim/metro/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJourney(id string, mode router.Mode, start, end string) *router.Journey {
	return &router.Journey{
		ID:    id,
		Mode:  mode,
		Start: start,
		End:   end,
		Path: &router.PathResult{
			Mode:      mode,
			Nodes:     []router.Node{{Station: start, Line: "red"}, {Station: end, Line: "red"}},
			TotalCost: 1,
		},
		Legs:       []router.Leg{{From: start, To: end, Line: "red", DistanceKm: 2.5}},
		DistanceKm: 2.5,
		Fare:       20,
	}
}

func TestStoreKeepsOnlyLastJourney(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journey.db")
	s, err := store.Open(path)
	require.NoError(t, err)

	j, err := s.LoadLast(ctx)
	require.NoError(t, err)
	assert.Nil(t, j)

	require.NoError(t, s.SaveLast(ctx, testJourney("first", router.ModeDistance, "A", "B")))
	require.NoError(t, s.SaveLast(ctx, testJourney("second", router.ModeInterchange, "C", "D")))
	require.NoError(t, s.Close())

	// 重新打开后仍能读到最近一次
	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()
	j, err = s.LoadLast(ctx)
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.Equal(t, testJourney("second", router.ModeInterchange, "C", "D"), j)
}

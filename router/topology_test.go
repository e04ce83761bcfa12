package router_test

import (
	"testing"

	"git.fiblab.net/sim/metro/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopology(t *testing.T) {
	r := newTestRouter(t, `A_red,B_(interchange red blue),1
B_blue,C_blue,2
C_blue,D_teal,0.5
`)
	topology := r.Topology()
	require.Len(t, topology.Stations, 4)
	assert.Equal(t, router.StationRecord{Index: 2, Name: "B", Lines: []string{"blue", "red"}, IsInterchange: true}, topology.Stations[1])
	assert.Equal(t, []router.Track{
		{From: "A", To: "B", Lines: []string{"red"}, DistanceKm: 1},
		{From: "B", To: "C", Lines: []string{"blue"}, DistanceKm: 2},
		{From: "C", To: "D", Lines: []string{}, DistanceKm: 0.5},
	}, topology.Tracks)
	assert.Equal(t, []string{"red", "blue", "teal"}, topology.Lines)
	assert.Equal(t, "#e51d25", topology.LineColors["red"])
	_, ok := topology.LineColors["teal"]
	assert.False(t, ok)

	// 拓扑是副本，修改不影响Router
	topology.Stations[1].Lines[0] = "x"
	topology.Tracks[0].Lines[0] = "x"
	assert.Equal(t, []string{"blue", "red"}, r.Stations()[1].Lines)
	assert.Equal(t, []string{"red"}, r.Topology().Tracks[0].Lines)
}

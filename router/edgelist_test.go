package router_test

import (
	"bytes"
	"strings"
	"testing"

	"git.fiblab.net/sim/metro/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEdges(t *testing.T) {
	input := `# metro edges
station_u,station_v,distance_km
A_red,B_red,2.0
# comment in the middle

B_red, C_red ,3
"B_(interchange red blue)",D_blue,1.5
`
	edges, err := router.ReadEdges(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []router.TrackEdge{
		{StationU: "A_red", StationV: "B_red", DistanceKm: 2},
		{StationU: "B_red", StationV: "C_red", DistanceKm: 3},
		{StationU: "B_(interchange red blue)", StationV: "D_blue", DistanceKm: 1.5},
	}, edges)
}

func TestReadEdgesMalformed(t *testing.T) {
	for _, input := range []string{
		"A_red,B_red,2\nA_red,B_red\n",
		"A_red,B_red,2\nA_red,B_red,abc\n",
		"A_red,B_red,0\n",
		"A_red,B_red,-1.5\n",
		"A_red,B,1\n",
		"A_red,B_red,1,extra\n",
		// 第一行不是表头时同样检查
		"A_red,B_red,2.O\nB_red,C_red,3\n",
		"from,to,km\nA_red,B_red,2\n",
	} {
		_, err := router.ReadEdges(strings.NewReader(input))
		assert.ErrorIs(t, err, router.ErrMalformedRow, "input %q", input)
	}
	_, err := router.ReadEdges(strings.NewReader("A_red,B,1\n"))
	assert.ErrorIs(t, err, router.ErrMalformedStationName)
	assert.Contains(t, err.Error(), "line 1")
}

func TestReadEdgesHeader(t *testing.T) {
	edges, err := router.ReadEdges(strings.NewReader(" Station_U , STATION_V,distance_km\nA_red,B_red,2\n"))
	require.NoError(t, err)
	assert.Len(t, edges, 1)
	// 表头只能出现在第一行
	_, err = router.ReadEdges(strings.NewReader("A_red,B_red,2\nstation_u,station_v,distance_km\n"))
	assert.ErrorIs(t, err, router.ErrMalformedRow)
}

func TestWriteEdges(t *testing.T) {
	edges := []router.TrackEdge{
		{StationU: "A_red", StationV: "B_(interchange red blue)", DistanceKm: 2.25},
		{StationU: "B_blue", StationV: "C_blue", DistanceKm: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, router.WriteEdges(&buf, edges))
	assert.True(t, strings.HasPrefix(buf.String(), "station_u,station_v,distance_km\n"))
	read, err := router.ReadEdges(&buf)
	require.NoError(t, err)
	assert.Equal(t, edges, read)
}

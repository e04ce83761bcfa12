package main

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/metro/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t testing.TB, cacheSize int) *MetroServer {
	t.Helper()
	edges, err := readEdgesFile("testdata/edges.csv")
	require.NoError(t, err)
	r, err := router.New(edges)
	require.NoError(t, err)
	return NewMetroServer(r, NewJourneySlot(nil), cacheSize)
}

func TestRunQuery(t *testing.T) {
	server := newTestServer(t, 0)

	var out bytes.Buffer
	require.NoError(t, runQuery(&out, server, "Samaypur Badli", "Pragati Maidan", "distance"))
	assert.Contains(t, out.String(), "Samaypur Badli -> Pragati Maidan (distance)")
	assert.Contains(t, out.String(), "stations: 6, interchanges: 2, distance: 16.80 km, fare: 43")

	out.Reset()
	require.NoError(t, runQuery(&out, server, "11", "9", "interchange"))
	assert.Contains(t, out.String(), " 1. Ride the Yellow line from Samaypur Badli to Rajiv Chowk")
	assert.Contains(t, out.String(), "stations: 8, interchanges: 1, distance: 17.20 km, fare: 43")

	out.Reset()
	err := runQuery(&out, server, "Nowhere", "Pragati Maidan", "distance")
	assert.ErrorIs(t, err, router.ErrUnknownStation)
	assert.Empty(t, out.String())

	err = runQuery(&out, server, "1", "2", "fastest")
	assert.ErrorIs(t, err, router.ErrUnknownMode)
}

func FuzzRoute(f *testing.F) {
	server := newTestServer(f, 16)
	f.Add(uint8(11), uint8(9), false)
	f.Add(uint8(1), uint8(1), true)
	f.Add(uint8(0), uint8(40), true)

	// 构造随机请求
	f.Fuzz(func(t *testing.T, start uint8, end uint8, interchange bool) {
		mode := router.ModeDistance
		if interchange {
			mode = router.ModeInterchange
		}
		req := &GetRouteRequest{
			Start: strconv.Itoa(int(start)),
			End:   strconv.Itoa(int(end)),
			Mode:  mode,
		}
		res, err := server.GetRoute(context.Background(), connect.NewRequest(req))
		// 有且只有一个是nil
		assert.True(t, (res == nil) != (err == nil))
		if err == nil {
			j := res.Msg.Journey
			assert.NotEmpty(t, j.ID)
			assert.Len(t, res.Msg.Directions, len(j.Directions))
			assert.GreaterOrEqual(t, j.Fare, 0)
		} else {
			assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
		}
	})
}

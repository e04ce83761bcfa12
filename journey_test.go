package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"git.fiblab.net/sim/metro/router"
	"git.fiblab.net/sim/metro/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJourneySlot(t *testing.T) {
	server := newTestServer(t, 0)
	slot := NewJourneySlot(nil)
	assert.Nil(t, slot.Get())

	j, err := server.router.Route("Inderlok", "Rajiv Chowk", router.ModeInterchange)
	require.NoError(t, err)
	saved := slot.Put(context.Background(), j)
	assert.NotEmpty(t, saved.ID)
	// 原路线不被修改
	assert.Empty(t, j.ID)
	assert.Same(t, saved, slot.Get())
	assert.NoError(t, slot.Close())
}

func TestJourneySlotConcurrent(t *testing.T) {
	server := newTestServer(t, 0)
	slot := NewJourneySlot(nil)
	j, err := server.router.Route("1", "12", router.ModeDistance)
	require.NoError(t, err)
	var wg sync.WaitGroup
	ids := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- slot.Put(context.Background(), j).ID
			_ = slot.Get()
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[string]bool)
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 32)
	assert.True(t, seen[slot.Get().ID])
}

func TestJourneySlotRestore(t *testing.T) {
	server := newTestServer(t, 0)
	path := filepath.Join(t.TempDir(), "last.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	slot := NewJourneySlot(st)
	j, err := server.router.Route("Tis Hazari", "Pragati Maidan", router.ModeDistance)
	require.NoError(t, err)
	saved := slot.Put(context.Background(), j)
	require.NoError(t, slot.Close())

	st, err = store.Open(path)
	require.NoError(t, err)
	restored := NewJourneySlot(st)
	defer restored.Close()
	got := restored.Get()
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, saved.Stations(), got.Stations())
	assert.Equal(t, saved.Fare, got.Fare)
}

package main

import (
	"context"

	"git.fiblab.net/sim/metro/router"
	"git.fiblab.net/sim/metro/store"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// 最近一次查询的路线，供可视化使用
// 并发写入时以最后一次为准
type JourneySlot struct {
	mu      *xsync.RBMutex
	journey *router.Journey
	// 可选的持久化
	store *store.Store
}

func NewJourneySlot(s *store.Store) *JourneySlot {
	slot := &JourneySlot{mu: xsync.NewRBMutex(), store: s}
	if s != nil {
		j, err := s.LoadLast(context.Background())
		if err != nil {
			log.Warnf("failed to restore last journey: %v", err)
		} else if j != nil {
			log.Infof("restored last journey %s: %s -> %s", j.ID, j.Start, j.End)
			slot.journey = j
		}
	}
	return slot
}

// 为路线分配id并保存，返回保存的副本
func (s *JourneySlot) Put(ctx context.Context, j *router.Journey) *router.Journey {
	saved := *j
	saved.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journey = &saved
	// 持久化失败不影响本次查询
	if s.store != nil {
		if err := s.store.SaveLast(ctx, &saved); err != nil {
			log.Warnf("failed to persist journey %s: %v", saved.ID, err)
		}
	}
	return &saved
}

// 没有路线时返回nil
func (s *JourneySlot) Get() *router.Journey {
	if s == nil {
		return nil
	}
	token := s.mu.RLock()
	defer s.mu.RUnlock(token)
	return s.journey
}

func (s *JourneySlot) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

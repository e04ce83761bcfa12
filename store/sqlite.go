// Package store persists the most recent journey so that it survives a restart.
// Only one journey is ever kept.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"git.fiblab.net/sim/metro/router"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var log = logrus.WithField("module", "store")

const schema = `
CREATE TABLE IF NOT EXISTS last_journey (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	journey_id  TEXT    NOT NULL,
	mode        TEXT    NOT NULL,
	start       TEXT    NOT NULL,
	end_station TEXT    NOT NULL,
	payload     TEXT    NOT NULL,
	saved_at    INTEGER NOT NULL
);`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite只允许一个写者
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	log.Debugf("journey store opened at %s", path)
	return &Store{db: db}, nil
}

// 覆盖保存最近一次的路线
func (s *Store) SaveLast(ctx context.Context, j *router.Journey) error {
	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal journey: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO last_journey (id, journey_id, mode, start, end_station, payload, saved_at)
VALUES (1, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	journey_id = excluded.journey_id,
	mode = excluded.mode,
	start = excluded.start,
	end_station = excluded.end_station,
	payload = excluded.payload,
	saved_at = excluded.saved_at`,
		j.ID, j.Mode.String(), j.Start, j.End, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save journey %s: %w", j.ID, err)
	}
	return nil
}

// 没有保存过路线时返回nil, nil
func (s *Store) LoadLast(ctx context.Context) (*router.Journey, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM last_journey WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load journey: %w", err)
	}
	j := new(router.Journey)
	if err := json.Unmarshal([]byte(payload), j); err != nil {
		return nil, fmt.Errorf("unmarshal journey: %w", err)
	}
	return j, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

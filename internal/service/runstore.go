package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/launchpanel/hub/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	lastRunKey  = "oneclick:lastrun"
	runCountKey = "oneclick:runs"
)

// RunStore keeps the latest one-click report in Redis so operators can
// inspect the previous pass and re-target failed users. It is optional:
// a nil *RunStore is a no-op.
type RunStore struct {
	rdb *redis.Client
}

// NewRunStore returns nil when addr is empty (feature disabled).
func NewRunStore(addr string) *RunStore {
	if addr == "" {
		return nil
	}
	return &RunStore{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (s *RunStore) Save(ctx context.Context, run *model.BatchRun) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if err := s.rdb.Set(ctx, lastRunKey, data, 0).Err(); err != nil {
		return fmt.Errorf("store last run: %w", err)
	}
	if err := s.rdb.Incr(ctx, runCountKey).Err(); err != nil {
		return fmt.Errorf("bump run counter: %w", err)
	}
	return nil
}

// RunCount returns the total number of recorded passes.
func (s *RunStore) RunCount(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	n, err := s.rdb.Get(ctx, runCountKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load run counter: %w", err)
	}
	return n, nil
}

// Last returns the most recent stored report, or nil when none exists.
func (s *RunStore) Last(ctx context.Context) (*model.BatchRun, error) {
	if s == nil {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, lastRunKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load last run: %w", err)
	}
	var run model.BatchRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse last run: %w", err)
	}
	return &run, nil
}

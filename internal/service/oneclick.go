package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/launchpanel/hub/internal/metrics"
	"github.com/launchpanel/hub/internal/model"
)

// TaskFunc is the per-user unit of work executed by a one-click pass. It
// returns a human-readable result payload or an error; it is expected to be
// safe to re-run (a stolen lock after a crash can re-select the same user).
type TaskFunc func(ctx context.Context, user *model.User) (string, error)

// OneClickService runs the one-click start batch: select ready users, run
// one task per user strictly sequentially, and aggregate per-user outcomes.
//
// Sequential execution is deliberate: the advertising API budget is shared
// and finite, and one in-flight task bounds the concurrent load on it to 1
// without a second layer of concurrency control. Wall time grows linearly
// with user count.
type OneClickService struct {
	db   *sql.DB
	task TaskFunc
}

func NewOneClickService(db *sql.DB, task TaskFunc) *OneClickService {
	return &OneClickService{db: db, task: task}
}

type RunOptions struct {
	// UserID targets a single user; empty selects all ready users.
	UserID string
}

// Run executes one batch pass. A user's task failure is recorded in its
// result and never aborts the pass; only selection errors (bad target,
// query failure) are returned as errors.
func (s *OneClickService) Run(ctx context.Context, opts RunOptions) (*model.BatchRun, error) {
	users, err := s.selectUsers(ctx, opts)
	if err != nil {
		return nil, err
	}

	run := &model.BatchRun{Results: []model.UserResult{}}
	if len(users) == 0 {
		run.ExecutedAt = time.Now().UTC().Format(time.RFC3339Nano)
		run.Message = "no users ready for one-click start"
		metrics.OneClickRuns.Inc()
		return run, nil
	}

	for i := range users {
		user := &users[i]
		start := time.Now()
		data, taskErr := s.runTask(ctx, user)
		elapsed := time.Since(start)

		res := model.UserResult{
			UserID:     user.UserID,
			DurationMs: elapsed.Milliseconds(),
		}
		if taskErr != nil {
			res.ErrorMessage = taskErr.Error()
			run.FailCount++
			metrics.UserTasks.WithLabelValues("fail").Inc()
			log.Printf("oneclick: user %s failed after %s: %v", user.UserID, elapsed, taskErr)
		} else {
			res.OK = true
			res.Data = data
			run.OKCount++
			metrics.UserTasks.WithLabelValues("ok").Inc()
			log.Printf("oneclick: user %s ok in %s", user.UserID, elapsed)
		}
		run.Results = append(run.Results, res)
	}

	run.ExecutedCount = len(run.Results)
	run.ExecutedAt = time.Now().UTC().Format(time.RFC3339Nano)
	metrics.OneClickRuns.Inc()
	return run, nil
}

// runTask is the failure boundary around one user's task. A panicking task
// becomes a failed result, not a dead batch.
func (s *OneClickService) runTask(ctx context.Context, user *model.User) (data string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return s.task(ctx, user)
}

// selectUsers picks the work set. A user is ready when it is enabled, not
// deleted, and has at least one enabled, non-deleted campaign holding at
// least one enabled, non-deleted affiliate with a non-empty offer URL.
func (s *OneClickService) selectUsers(ctx context.Context, opts RunOptions) ([]model.User, error) {
	if opts.UserID != "" {
		var u model.User
		var enabled int
		err := s.db.QueryRowContext(ctx, `
			SELECT user_id, email, name, api_key, enabled, created_at, updated_at
			FROM users WHERE user_id = ? AND deleted = 0`, opts.UserID).
			Scan(&u.UserID, &u.Email, &u.Name, &u.APIKey, &enabled, &u.CreatedAt, &u.UpdatedAt)
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("select target user: %w", err)
		}
		u.Enabled = enabled == 1
		return []model.User{u}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id, u.email, u.name, u.api_key, u.enabled, u.created_at, u.updated_at
		FROM users u
		WHERE u.deleted = 0 AND u.enabled = 1
		  AND EXISTS (
			SELECT 1 FROM campaigns c
			WHERE c.user_id = u.user_id AND c.deleted = 0 AND c.enabled = 1
			  AND EXISTS (
				SELECT 1 FROM affiliates a
				WHERE a.campaign_id = c.campaign_id
				  AND a.deleted = 0 AND a.enabled = 1 AND a.offer_url <> ''
			  )
		  )
		ORDER BY u.created_at`)
	if err != nil {
		return nil, fmt.Errorf("select ready users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var enabled int
		if err := rows.Scan(&u.UserID, &u.Email, &u.Name, &u.APIKey, &enabled, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Enabled = enabled == 1
		users = append(users, u)
	}
	return users, rows.Err()
}

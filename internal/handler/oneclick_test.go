package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/launchpanel/hub/internal/middleware"
	"github.com/launchpanel/hub/internal/model"
	"github.com/launchpanel/hub/internal/service"
)

func setupOneClickHandlerDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
CREATE TABLE users (
    user_id    TEXT PRIMARY KEY,
    email      TEXT NOT NULL,
    name       TEXT NOT NULL DEFAULT '',
    api_key    TEXT NOT NULL DEFAULT '',
    enabled    INTEGER NOT NULL DEFAULT 1,
    deleted    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE campaigns (
    campaign_id TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    name        TEXT NOT NULL,
    daily_limit INTEGER NOT NULL DEFAULT 0,
    enabled     INTEGER NOT NULL DEFAULT 1,
    deleted     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
CREATE TABLE affiliates (
    affiliate_id TEXT PRIMARY KEY,
    campaign_id  TEXT NOT NULL,
    name         TEXT NOT NULL DEFAULT '',
    offer_url    TEXT NOT NULL DEFAULT '',
    enabled      INTEGER NOT NULL DEFAULT 1,
    deleted      INTEGER NOT NULL DEFAULT 0,
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func seedHandlerReadyUser(t *testing.T, db *sql.DB, userID string) {
	t.Helper()
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	for _, q := range []struct {
		query string
		args  []any
	}{
		{`INSERT INTO users VALUES (?, ?, '', 'key', 1, 0, ?, ?)`, []any{userID, userID + "@example.com", ts, ts}},
		{`INSERT INTO campaigns VALUES (?, ?, 'c', 0, 1, 0, ?, ?)`, []any{userID + "-c1", userID, ts, ts}},
		{`INSERT INTO affiliates VALUES (?, ?, 'a', 'https://offer.example/x', 1, 0, ?, ?)`, []any{userID + "-a1", userID + "-c1", ts, ts}},
	} {
		if _, err := db.Exec(q.query, q.args...); err != nil {
			t.Fatalf("exec %q: %v", q.query, err)
		}
	}
}

func oneClickEndpoint(db *sql.DB, secret string, task service.TaskFunc) http.Handler {
	svc := service.NewOneClickService(db, task)
	h := NewOneClickHandler(svc, nil, nil)
	return middleware.RequireInternalSecret(secret)(http.HandlerFunc(h.Run))
}

func TestOneClickRunRejectsBadSecret(t *testing.T) {
	db := setupOneClickHandlerDB(t)
	seedHandlerReadyUser(t, db, "u1")

	var calls atomic.Int32
	endpoint := oneClickEndpoint(db, "s3cret", func(_ context.Context, _ *model.User) (string, error) {
		calls.Add(1)
		return "", nil
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/oneclick/run", nil)
	req.Header.Set("X-Hub-Auth", "wrong")
	rec := httptest.NewRecorder()
	endpoint.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if calls.Load() != 0 {
		t.Fatalf("task ran %d times behind a rejected secret", calls.Load())
	}
}

func TestOneClickRunFailsClosedWithoutSecret(t *testing.T) {
	db := setupOneClickHandlerDB(t)

	endpoint := oneClickEndpoint(db, "", func(_ context.Context, _ *model.User) (string, error) {
		t.Fatal("task must not run when the secret is unconfigured")
		return "", nil
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/oneclick/run", nil)
	req.Header.Set("X-Hub-Auth", "anything")
	rec := httptest.NewRecorder()
	endpoint.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestOneClickRunUnknownTarget(t *testing.T) {
	db := setupOneClickHandlerDB(t)

	endpoint := oneClickEndpoint(db, "s3cret", func(_ context.Context, _ *model.User) (string, error) {
		return "", nil
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/oneclick/run",
		strings.NewReader(`{"user_id":"ghost"}`))
	req.Header.Set("X-Hub-Auth", "s3cret")
	rec := httptest.NewRecorder()
	endpoint.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if body.Error.Code != "E_NOT_FOUND" {
		t.Fatalf("error code = %q, want E_NOT_FOUND", body.Error.Code)
	}
}

func TestOneClickRunReturnsReport(t *testing.T) {
	db := setupOneClickHandlerDB(t)
	seedHandlerReadyUser(t, db, "u1")
	seedHandlerReadyUser(t, db, "u2")

	endpoint := oneClickEndpoint(db, "s3cret", func(_ context.Context, u *model.User) (string, error) {
		if u.UserID == "u2" {
			return "", errors.New("upstream refused")
		}
		return "started", nil
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/oneclick/run", nil)
	req.Header.Set("X-Hub-Auth", "s3cret")
	rec := httptest.NewRecorder()
	endpoint.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even with failed users", rec.Code)
	}
	var run model.BatchRun
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("parse report: %v", err)
	}
	if run.ExecutedCount != 2 || run.OKCount != 1 || run.FailCount != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2 executed, 1 ok, 1 fail",
			run.ExecutedCount, run.OKCount, run.FailCount)
	}
	if run.ExecutedAt == "" {
		t.Fatal("executed_at missing from report")
	}
}

func TestOneClickRunEmptySelection(t *testing.T) {
	db := setupOneClickHandlerDB(t)

	endpoint := oneClickEndpoint(db, "s3cret", func(_ context.Context, _ *model.User) (string, error) {
		t.Fatal("task must not run with no ready users")
		return "", nil
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/oneclick/run", nil)
	req.Header.Set("X-Hub-Auth", "s3cret")
	rec := httptest.NewRecorder()
	endpoint.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var run model.BatchRun
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("parse report: %v", err)
	}
	if run.ExecutedCount != 0 || run.Message == "" {
		t.Fatalf("empty run = %+v, want zero executed and a message", run)
	}
}

func TestOneClickLastRunWithoutStore(t *testing.T) {
	h := NewOneClickHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/oneclick/last-run", nil)
	rec := httptest.NewRecorder()
	h.LastRun(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when no run is recorded", rec.Code)
	}
}

package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/launchpanel/hub/internal/service"
)

type OneClickHandler struct {
	svc      *service.OneClickService
	runs     *service.RunStore
	archiver *service.ReportArchiver
}

func NewOneClickHandler(svc *service.OneClickService, runs *service.RunStore, archiver *service.ReportArchiver) *OneClickHandler {
	return &OneClickHandler{svc: svc, runs: runs, archiver: archiver}
}

// POST /internal/oneclick/run
//
// The pass runs synchronously and the full report is the response body. A
// report with failures is still a 200: the batch completed, individual
// outcomes are in the results.
func (h *OneClickHandler) Run(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
	}
	// Body is optional; an empty body means "all ready users".
	if r.ContentLength > 0 {
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
			return
		}
	}

	run, err := h.svc.Run(r.Context(), service.RunOptions{UserID: body.UserID})
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}

	if err := h.runs.Save(r.Context(), run); err != nil {
		log.Printf("oneclick: store last run: %v", err)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.archiver.Archive(ctx, run); err != nil {
			log.Printf("oneclick: archive report: %v", err)
		}
	}()

	writeJSON(w, http.StatusOK, run)
}

// GET /v1/oneclick/last-run
func (h *OneClickHandler) LastRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Last(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", "no run recorded")
		return
	}
	total, err := h.runs.RunCount(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run, "total_runs": total})
}

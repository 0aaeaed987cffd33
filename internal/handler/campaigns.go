package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/launchpanel/hub/internal/model"
	"github.com/launchpanel/hub/internal/service"
)

type CampaignHandler struct {
	svc    *service.CampaignService
	affSvc *service.AffiliateService
}

func NewCampaignHandler(svc *service.CampaignService, affSvc *service.AffiliateService) *CampaignHandler {
	return &CampaignHandler{svc: svc, affSvc: affSvc}
}

// GET /v1/campaigns?user_id=...
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "user_id is required")
		return
	}
	campaigns, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

// POST /v1/campaigns?user_id=...
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "user_id is required")
		return
	}
	var in service.CreateCampaignInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	campaign, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "E_VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"campaign": campaign})
}

// PATCH /v1/campaigns/{campaign_id}
func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaign_id")
	var in service.UpdateCampaignInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	campaign, err := h.svc.Update(r.Context(), campaignID, in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if campaign == nil {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", "campaign not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaign": campaign})
}

// DELETE /v1/campaigns/{campaign_id}
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaign_id")
	if err := h.svc.Delete(r.Context(), campaignID); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/campaigns/{campaign_id}/affiliates
func (h *CampaignHandler) ListAffiliates(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaign_id")
	affiliates, err := h.affSvc.List(r.Context(), campaignID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if affiliates == nil {
		affiliates = []model.Affiliate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"affiliates": affiliates})
}

// POST /v1/campaigns/{campaign_id}/affiliates
func (h *CampaignHandler) CreateAffiliate(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaign_id")
	var in service.CreateAffiliateInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	affiliate, err := h.affSvc.Create(r.Context(), campaignID, in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "E_VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"affiliate": affiliate})
}

// PATCH /v1/affiliates/{affiliate_id}
func (h *CampaignHandler) UpdateAffiliate(w http.ResponseWriter, r *http.Request) {
	affiliateID := chi.URLParam(r, "affiliate_id")
	var in service.UpdateAffiliateInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	affiliate, err := h.affSvc.Update(r.Context(), affiliateID, in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if affiliate == nil {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", "affiliate not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"affiliate": affiliate})
}

// DELETE /v1/affiliates/{affiliate_id}
func (h *CampaignHandler) DeleteAffiliate(w http.ResponseWriter, r *http.Request) {
	affiliateID := chi.URLParam(r, "affiliate_id")
	if err := h.affSvc.Delete(r.Context(), affiliateID); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

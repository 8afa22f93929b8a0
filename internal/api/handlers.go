/**
 * @description
 * This file contains the HTTP handlers for the donation-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sevasetu/donation-service/internal/app"
	"github.com/sevasetu/donation-service/internal/domain"
	"github.com/sevasetu/donation-service/internal/store"
)

// DonationHandlers holds the application service that handlers will use.
type DonationHandlers struct {
	service *app.Service
}

// NewDonationHandlers creates a new instance of DonationHandlers.
func NewDonationHandlers(service *app.Service) *DonationHandlers {
	return &DonationHandlers{service: service}
}

// orderResponse is the handle returned to the client for completing payment in
// the gateway's hosted checkout widget.
type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InitFlowHandler handles POST /api/donations/init-flow. It validates the full
// request shape before any external call and never persists anything locally:
// a failed initiation is retried from scratch by the client.
func (h *DonationHandlers) InitFlowHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.DonationOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=init_flow outcome=reject reason=invalid_json err=%v", err)
		writeBadRequest(w)
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		log.Printf("level=warn component=api endpoint=init_flow outcome=reject reason=validation err=%v", err)
		writeBadRequest(w)
		return
	}

	order, err := h.service.InitiateDonation(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrCampaignNotFound) || errors.Is(err, app.ErrCampaignNotAccepting) {
			log.Printf("level=warn component=api endpoint=init_flow outcome=reject campaign_id=%d err=%v", req.CampaignID, err)
			writeBadRequest(w)
			return
		}
		log.Printf("level=error component=api endpoint=init_flow outcome=failed campaign_id=%d err=%v", req.CampaignID, err)
		writeInternalError(w)
		return
	}

	writeData(w, http.StatusOK, orderResponse{ID: order.ID, Status: order.Status})
}

// ListDonationsHandler handles GET /api/donations. Admins see every donation;
// volunteers only the rows where they are the referrer.
func (h *DonationHandlers) ListDonationsHandler(w http.ResponseWriter, r *http.Request) {
	authUser, ok := GetAuthUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authorization required")
		return
	}

	caller, err := h.service.ResolveUser(r.Context(), authUser.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		log.Printf("level=error component=api endpoint=list_donations outcome=failed username=%s err=%v", authUser.Username, err)
		writeInternalError(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	donations, err := h.service.ListDonations(r.Context(), caller, limit, offset)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_donations outcome=failed user_id=%s err=%v", caller.ID, err)
		writeInternalError(w)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"items": donations})
}

// CreateCampaignHandler handles POST /api/campaigns (admin only).
func (h *DonationHandlers) CreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w)
		return
	}
	if err := req.Validate(); err != nil {
		log.Printf("level=warn component=api endpoint=create_campaign outcome=reject reason=validation err=%v", err)
		writeBadRequest(w)
		return
	}

	campaign, err := h.service.CreateCampaign(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCampaign) {
			writeError(w, http.StatusConflict, "conflict", "slug already in use")
			return
		}
		log.Printf("level=error component=api endpoint=create_campaign outcome=failed err=%v", err)
		writeInternalError(w)
		return
	}

	writeData(w, http.StatusCreated, campaign)
}

// GetCampaignHandler handles GET /api/campaigns/{campaignID}.
func (h *DonationHandlers) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.ParseInt(chi.URLParam(r, "campaignID"), 10, 64)
	if err != nil || campaignID < 0 {
		writeBadRequest(w)
		return
	}

	campaign, err := h.service.GetCampaign(r.Context(), campaignID)
	if err != nil {
		if errors.Is(err, store.ErrCampaignNotFound) {
			writeError(w, http.StatusNotFound, "not-found", "campaign not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_campaign outcome=failed campaign_id=%d err=%v", campaignID, err)
		writeInternalError(w)
		return
	}

	writeData(w, http.StatusOK, campaign)
}

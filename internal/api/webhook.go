/**
 * @description
 * This file contains the HTTP handler for processing incoming payment webhooks
 * from Razorpay. It acts as the entry point for all asynchronous payment
 * notifications from the gateway.
 *
 * Key features:
 * - Security: validates the HMAC signature over the raw body before anything
 *   else parses the payload.
 * - Parsing: decodes the verified body into the typed event envelope.
 * - Reconciliation: delegates to the application service, which records terminal
 *   payment outcomes exactly once.
 *
 * @dependencies
 * - io, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store, pkg/razorpay.
 */

package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/sevasetu/donation-service/internal/app"
	"github.com/sevasetu/donation-service/internal/domain"
	"github.com/sevasetu/donation-service/internal/store"
	"github.com/sevasetu/donation-service/pkg/razorpay"
)

// PaymentRecorder is the slice of the application service the webhook handler
// depends on.
type PaymentRecorder interface {
	RecordPaymentEvent(ctx context.Context, eventID string, event *razorpay.WebhookEvent) (*domain.Donation, error)
}

// WebhookHandler processes incoming payment webhooks from Razorpay.
type WebhookHandler struct {
	service PaymentRecorder
	secret  string
}

// NewWebhookHandler creates a new handler for the capture endpoint. The webhook
// secret must be non-empty; bootstrap refuses to start without it.
func NewWebhookHandler(service PaymentRecorder, secret string) *WebhookHandler {
	return &WebhookHandler{service: service, secret: secret}
}

// ServeHTTP implements the http.Handler interface for POST /api/donations/capture.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		// Misconfiguration, not a client fault. Bootstrap normally prevents this.
		log.Printf("level=error component=webhook msg=\"webhook secret not configured\"")
		writeInternalError(w)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("level=warn component=webhook outcome=reject reason=body_read err=%v", err)
		writeInternalError(w)
		return
	}

	signature := r.Header.Get(razorpay.SignatureHeader)
	eventID := r.Header.Get(razorpay.EventIDHeader)
	if signature == "" || eventID == "" {
		log.Printf("level=warn component=webhook outcome=reject reason=missing_headers signature_set=%t event_id_set=%t", signature != "", eventID != "")
		writeInternalError(w)
		return
	}

	// The signature covers the raw, unparsed bytes.
	if !razorpay.VerifyWebhookSignature(body, signature, h.secret) {
		log.Printf("level=warn component=webhook outcome=reject reason=invalid_signature event_id=%s", eventID)
		writeError(w, http.StatusForbidden, "forbidden", "not allowed")
		return
	}

	event, err := razorpay.ParseWebhookEvent(body)
	if err != nil {
		log.Printf("level=warn component=webhook outcome=reject reason=invalid_json event_id=%s err=%v", eventID, err)
		writeBadRequest(w)
		return
	}

	donation, err := h.service.RecordPaymentEvent(r.Context(), eventID, event)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMalformedEvent):
			log.Printf("level=warn component=webhook outcome=reject reason=unexpected_shape event_id=%s event=%s", eventID, event.Event)
			writeBadRequest(w)
		case errors.Is(err, store.ErrDuplicateDonation):
			// Redelivery of an already-recorded event. The transaction rolled
			// back; report an error and let the gateway's policy decide.
			log.Printf("level=warn component=webhook outcome=duplicate event_id=%s event=%s", eventID, event.Event)
			writeInternalError(w)
		default:
			log.Printf("level=error component=webhook outcome=failed event_id=%s event=%s err=%v", eventID, event.Event, err)
			writeInternalError(w)
		}
		return
	}

	if donation == nil {
		// Authorized-only event: acknowledged, nothing persisted.
		log.Printf("level=info component=webhook outcome=acknowledged event_id=%s event=%s", eventID, event.Event)
	} else {
		log.Printf("level=info component=webhook outcome=recorded event_id=%s order_id=%s status=%s", eventID, donation.OrderID, donation.Status)
	}
	writeData(w, http.StatusOK, struct{}{})
}

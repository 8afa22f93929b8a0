/**
 * @description
 * This file models the Razorpay webhook wire format and implements signature
 * verification for incoming deliveries.
 *
 * Key features:
 * - Security: HMAC-SHA256 over the raw (unparsed) body, compared in constant time.
 * - Parsing: the untyped event-type string is resolved into a tagged EventKind at
 *   the boundary so callers can match exhaustively over the known variants.
 *
 * @dependencies
 * - crypto/hmac, crypto/sha256, encoding/hex, encoding/json: Standard Go libraries.
 */
package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

// Webhook header names as sent by Razorpay. Header lookup in net/http is
// case-insensitive.
const (
	SignatureHeader = "X-Razorpay-Signature"
	EventIDHeader   = "X-Razorpay-Event-Id"
)

// VerifyWebhookSignature reports whether signature is a valid HMAC-SHA256 hex
// digest of body under secret. The comparison is constant time. An empty secret
// or signature never verifies.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

// EventKind is the tagged variant an event-type string resolves to.
type EventKind int

const (
	EventUnrecognized EventKind = iota
	EventPaymentAuthorized
	EventPaymentCaptured
	EventPaymentFailed
)

// WebhookEvent is the top-level envelope of a Razorpay webhook delivery.
type WebhookEvent struct {
	Entity    string       `json:"entity"` // always "event"
	AccountID string       `json:"account_id"`
	Event     string       `json:"event"`
	Contains  []string     `json:"contains"`
	Payload   EventPayload `json:"payload"`
	CreatedAt int64        `json:"created_at"`
}

// EventPayload wraps the entities an event carries. Payment events always nest
// the payment entity one level down.
type EventPayload struct {
	Payment *PaymentWrapper `json:"payment,omitempty"`
}

// PaymentWrapper matches Razorpay's `payload.payment.entity` nesting.
type PaymentWrapper struct {
	Entity *PaymentEntity `json:"entity"`
}

// PaymentEntity models the payment object inside a webhook payload. Only the
// fields this service reads are declared; the wire format is owned by Razorpay.
type PaymentEntity struct {
	ID             string     `json:"id"`
	Entity         string     `json:"entity"` // always "payment"
	Amount         int64      `json:"amount"` // in paise
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	OrderID        string     `json:"order_id"`
	International  bool       `json:"international"`
	Method         string     `json:"method"`
	AmountRefunded int64      `json:"amount_refunded"`
	Captured       bool       `json:"captured"`
	Email          string     `json:"email"`
	Contact        string     `json:"contact"`
	Notes          OrderNotes `json:"notes"`
	Fee            *int64     `json:"fee"`
	Tax            *int64     `json:"tax"`
	ErrorCode      *string    `json:"error_code"`
	ErrorReason    *string    `json:"error_reason"`
	CreatedAt      int64      `json:"created_at"`
}

// OrderNotes carries the identifiers embedded at order creation. Values may
// arrive as JSON strings or numbers depending on how the order was created, so
// both are accepted.
type OrderNotes struct {
	CampaignID string
	ReferralID string
}

func (n *OrderNotes) UnmarshalJSON(data []byte) error {
	var raw struct {
		CampaignID flexString `json:"campaignId"`
		ReferralID flexString `json:"referralId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.CampaignID = string(raw.CampaignID)
	n.ReferralID = string(raw.ReferralID)
	return nil
}

func (n OrderNotes) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"campaignId": n.CampaignID,
		"referralId": n.ReferralID,
	})
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*f = flexString(num.String())
	return nil
}

// ParseWebhookEvent decodes a verified raw body into the event envelope. Callers
// must verify the signature before parsing.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Kind resolves the raw event-type string into a tagged variant. Anything
// outside the payment lifecycle this service records maps to EventUnrecognized.
func (e *WebhookEvent) Kind() EventKind {
	switch e.Event {
	case "payment.authorized":
		return EventPaymentAuthorized
	case "payment.captured":
		return EventPaymentCaptured
	case "payment.failed":
		return EventPaymentFailed
	}
	return EventUnrecognized
}

// Payment returns the payment entity, or nil when the envelope does not carry one.
func (e *WebhookEvent) Payment() *PaymentEntity {
	if e.Payload.Payment == nil {
		return nil
	}
	return e.Payload.Payment.Entity
}

// CampaignIDFromNotes parses the campaign identifier bound to the order at
// creation time. The second return is false when the note is absent or malformed.
func (p *PaymentEntity) CampaignIDFromNotes() (int64, bool) {
	raw := strings.TrimSpace(p.Notes.CampaignID)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

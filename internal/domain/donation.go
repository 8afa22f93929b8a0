/**
 * @description
 * This file defines the core domain models for the donation-service: the persisted
 * Donation record and the DTO used to initiate a donation order.
 *
 * @notes
 * - Amounts are stored as `int64` in the smallest currency unit (paise), which
 *   avoids floating-point inaccuracies with financial data.
 * - `EventID` and `OrderID` are unique in the database; they form the idempotency
 *   boundary for webhook redeliveries.
 * - Request validation uses ozzo-validation so every field check, including Amount
 *   construction, composes into one schema evaluated before any external call.
 */

package domain

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// DonationStatus is the terminal payment outcome recorded for a donation.
type DonationStatus string

const (
	DonationStatusFailed     DonationStatus = "failed"
	DonationStatusCaptured   DonationStatus = "captured"
	DonationStatusAuthorized DonationStatus = "authorized"
)

// Valid reports whether the status is one of the recorded outcomes.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusFailed, DonationStatusCaptured, DonationStatusAuthorized:
		return true
	}
	return false
}

// PaymentMethod is the instrument the donor paid with, as reported by the gateway.
type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodWallet     PaymentMethod = "wallet"
	PaymentMethodNetbanking PaymentMethod = "netbanking"
)

// Valid reports whether the method is one the gateway can deliver.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodWallet, PaymentMethodNetbanking:
		return true
	}
	return false
}

// Donation is the persisted record of one payment outcome reported by the gateway.
// Exactly one row exists per gateway event; rows are never mutated after insert.
type Donation struct {
	ID         uuid.UUID      `json:"id"`
	EventID    string         `json:"event_id"`
	AccountID  string         `json:"account_id"`
	CampaignID int64          `json:"campaign_id"`
	OrderID    string         `json:"order_id"`
	ReferrerID *uuid.UUID     `json:"referrer_id,omitempty"`
	Amount     int64          `json:"amount"` // in paise
	Status     DonationStatus `json:"status"`
	Currency   string         `json:"currency"`
	Email      *string        `json:"email,omitempty"`
	Contact    *string        `json:"contact,omitempty"`
	Method     PaymentMethod  `json:"method"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Donor carries the donor details submitted with an order initiation request.
type Donor struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// DonationOrderRequest is the DTO for the order initiation endpoint. It is
// ephemeral: validated fully, forwarded to the gateway, never persisted.
type DonationOrderRequest struct {
	Amount     int64  `json:"amount"` // in paise
	CampaignID int64  `json:"campaignId"`
	ReferralID string `json:"referralId"`
	Donor      Donor  `json:"donor"`
}

// Normalize trims and canonicalizes free-text fields in place.
func (r *DonationOrderRequest) Normalize() {
	r.ReferralID = strings.TrimSpace(r.ReferralID)
	r.Donor.Name = strings.ToLower(strings.TrimSpace(r.Donor.Name))
	r.Donor.Email = strings.TrimSpace(r.Donor.Email)
}

// Validate checks the full request shape. Call Normalize first.
func (r DonationOrderRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.By(validAmount)),
		validation.Field(&r.CampaignID, validation.Min(int64(0))),
		validation.Field(&r.ReferralID, validation.Length(0, 64)),
	)
	if err != nil {
		return err
	}
	return r.Donor.Validate()
}

// Validate checks donor name and the optional email.
func (d Donor) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(2, 64)),
		validation.Field(&d.Email, is.Email),
	)
}

func validAmount(value interface{}) error {
	raw, _ := value.(int64)
	_, err := NewAmount(raw)
	return err
}

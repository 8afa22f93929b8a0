/**
 * @description
 * This file contains the core business logic for the donation-service. The `Service`
 * struct orchestrates the two donation flows, coordinating between the database
 * repository, the Razorpay API client, and the message broker.
 *
 * Key features:
 * - Order initiation: verifies the campaign accepts donations, then creates the
 *   gateway order with campaign/referral identifiers bound into its notes.
 * - Webhook reconciliation: maps a verified payment event onto a Donation record
 *   and persists it exactly once through the repository's transactional insert.
 * - Publishes a `donation.recorded` event to RabbitMQ for asynchronous processing
 *   (receipts, notifications) by downstream consumers.
 *
 * @dependencies
 * - context, errors, fmt, log, strconv: Standard Go libraries.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/razorpay, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/sevasetu/donation-service/internal/domain"
	"github.com/sevasetu/donation-service/internal/store"
	"github.com/sevasetu/donation-service/pkg/rabbitmq"
	"github.com/sevasetu/donation-service/pkg/razorpay"
)

var (
	// ErrCampaignNotAccepting is returned when the campaign exists but is paused.
	ErrCampaignNotAccepting = errors.New("campaign is not accepting donations")

	// ErrMalformedEvent is returned for an authentic webhook whose payload is
	// missing the payment entity, the campaign note, or carries values outside
	// the recorded enums.
	ErrMalformedEvent = errors.New("webhook event has unexpected shape")
)

// OrderCreator is the slice of the gateway client the service depends on.
type OrderCreator interface {
	CreateOrder(ctx context.Context, params razorpay.OrderParams) (*razorpay.Order, error)
}

// Service provides the core business logic for donations.
type Service struct {
	repo          store.Repository
	gateway       OrderCreator
	eventProducer rabbitmq.Publisher
}

// NewService creates a new donation service instance.
func NewService(repo store.Repository, gateway OrderCreator, producer rabbitmq.Publisher) *Service {
	return &Service{
		repo:          repo,
		gateway:       gateway,
		eventProducer: producer,
	}
}

// InitiateDonation creates a payment order with the gateway for a validated
// request. The campaign and referral identifiers travel as order notes so the
// asynchronous webhook can recover them without trusting the capture payload.
// Nothing is persisted locally; a failed initiation is simply retried by the
// client.
func (s *Service) InitiateDonation(ctx context.Context, req domain.DonationOrderRequest) (*razorpay.Order, error) {
	campaign, err := s.repo.FindCampaignByID(ctx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("campaign lookup failed: %w", err)
	}
	if campaign.Status != domain.CampaignStatusRunning {
		return nil, ErrCampaignNotAccepting
	}

	amount, err := domain.NewAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderParams{
		Amount:   amount.Value(),
		Currency: amount.Currency(),
		Receipt:  fmt.Sprintf("%d-%s", req.CampaignID, req.ReferralID),
		Notes: map[string]string{
			"campaignId": strconv.FormatInt(req.CampaignID, 10),
			"referralId": req.ReferralID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gateway order creation failed: %w", err)
	}

	log.Printf("level=info component=app operation=initiate_donation outcome=created order_id=%s campaign_id=%d amount=%d", order.ID, req.CampaignID, amount.Value())
	return order, nil
}

// RecordPaymentEvent reconciles one verified webhook delivery. The returned
// donation is nil for a `payment.authorized` event, which is acknowledged
// without persistence: only terminal outcomes reach storage.
func (s *Service) RecordPaymentEvent(ctx context.Context, eventID string, event *razorpay.WebhookEvent) (*domain.Donation, error) {
	payment := event.Payment()
	if payment == nil {
		return nil, ErrMalformedEvent
	}
	campaignID, ok := payment.CampaignIDFromNotes()
	if !ok {
		return nil, ErrMalformedEvent
	}

	switch event.Kind() {
	case razorpay.EventPaymentAuthorized:
		// Interim state. Acknowledge so the gateway stops redelivering.
		return nil, nil
	case razorpay.EventPaymentCaptured, razorpay.EventPaymentFailed:
		// Terminal outcomes, recorded below.
	default:
		return nil, ErrMalformedEvent
	}

	status := domain.DonationStatus(payment.Status)
	method := domain.PaymentMethod(payment.Method)
	if !status.Valid() || !method.Valid() {
		return nil, ErrMalformedEvent
	}

	donation := &domain.Donation{
		EventID:    eventID,
		AccountID:  event.AccountID,
		CampaignID: campaignID,
		OrderID:    payment.OrderID,
		Amount:     payment.Amount,
		Status:     status,
		Currency:   payment.Currency,
		Email:      optionalString(payment.Email),
		Contact:    optionalString(payment.Contact),
		Method:     method,
	}

	recorded, err := s.repo.RecordDonation(ctx, donation, payment.Notes.ReferralID)
	if err != nil {
		return nil, err
	}

	s.publishDonationRecorded(ctx, recorded)
	return recorded, nil
}

// ResolveUser looks up the account behind an authenticated username.
func (s *Service) ResolveUser(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindUserByUsername(ctx, username)
}

// ListDonations returns donations visible to the caller: admins see everything,
// volunteers only the rows attributed to them.
func (s *Service) ListDonations(ctx context.Context, caller *domain.User, limit, offset int) ([]domain.Donation, error) {
	filter := store.DonationFilter{Limit: limit, Offset: offset}
	if caller.Role != domain.RoleAdmin {
		filter.ReferrerID = &caller.ID
	}
	return s.repo.ListDonations(ctx, filter)
}

// CreateCampaign persists a new campaign in paused state.
func (s *Service) CreateCampaign(ctx context.Context, req domain.CreateCampaignRequest) (*domain.Campaign, error) {
	campaign := &domain.Campaign{
		Name:        req.Name,
		Description: req.Description,
		Goal:        req.Goal,
		Status:      domain.CampaignStatusPaused,
		Slug:        req.Slug,
	}
	return s.repo.CreateCampaign(ctx, campaign)
}

// GetCampaign returns a campaign by id.
func (s *Service) GetCampaign(ctx context.Context, campaignID int64) (*domain.Campaign, error) {
	return s.repo.FindCampaignByID(ctx, campaignID)
}

func (s *Service) publishDonationRecorded(ctx context.Context, d *domain.Donation) {
	if s.eventProducer == nil {
		return
	}
	event := rabbitmq.DonationRecordedEvent{
		DonationID: d.ID,
		CampaignID: d.CampaignID,
		OrderID:    d.OrderID,
		ReferrerID: d.ReferrerID,
		Amount:     d.Amount,
		Status:     string(d.Status),
		Timestamp:  time.Now().UTC(),
	}
	// Best effort: the donation is already committed, a lost event only delays
	// downstream notifications.
	if err := s.eventProducer.PublishDonationRecorded(ctx, event); err != nil {
		log.Printf("level=warn component=app msg=\"failed to publish donation.recorded\" donation_id=%s err=%v", d.ID, err)
	}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sevasetu/donation-service/internal/domain"
	"github.com/sevasetu/donation-service/internal/store"
	"github.com/sevasetu/donation-service/pkg/razorpay"
)

// fakeRepository implements store.Repository in memory, mirroring the
// uniqueness guarantees the database enforces on event_id and order_id.
type fakeRepository struct {
	users     map[string]*domain.User
	campaigns map[int64]*domain.Campaign
	donations []domain.Donation
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:     make(map[string]*domain.User),
		campaigns: make(map[int64]*domain.Campaign),
	}
}

func (r *fakeRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeRepository) FindCampaignByID(ctx context.Context, campaignID int64) (*domain.Campaign, error) {
	campaign, ok := r.campaigns[campaignID]
	if !ok {
		return nil, store.ErrCampaignNotFound
	}
	return campaign, nil
}

func (r *fakeRepository) CreateCampaign(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	campaign.ID = int64(len(r.campaigns) + 1)
	r.campaigns[campaign.ID] = campaign
	return campaign, nil
}

func (r *fakeRepository) RecordDonation(ctx context.Context, donation *domain.Donation, referralUsername string) (*domain.Donation, error) {
	for _, existing := range r.donations {
		if existing.EventID == donation.EventID || existing.OrderID == donation.OrderID {
			return nil, store.ErrDuplicateDonation
		}
	}
	if _, ok := r.campaigns[donation.CampaignID]; !ok {
		return nil, store.ErrCampaignNotFound
	}
	if referralUsername != "" {
		if user, ok := r.users[referralUsername]; ok {
			id := user.ID
			donation.ReferrerID = &id
		}
	}
	donation.ID = uuid.New()
	r.donations = append(r.donations, *donation)
	return donation, nil
}

func (r *fakeRepository) ListDonations(ctx context.Context, filter store.DonationFilter) ([]domain.Donation, error) {
	var items []domain.Donation
	for _, d := range r.donations {
		if filter.ReferrerID != nil {
			if d.ReferrerID == nil || *d.ReferrerID != *filter.ReferrerID {
				continue
			}
		}
		items = append(items, d)
	}
	return items, nil
}

// fakeGateway records the order params it received and returns a canned order.
type fakeGateway struct {
	lastParams *razorpay.OrderParams
	err        error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, params razorpay.OrderParams) (*razorpay.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastParams = &params
	return &razorpay.Order{ID: "order_X", Status: "created", Amount: params.Amount, Currency: params.Currency}, nil
}

func runningCampaign(id int64) *domain.Campaign {
	return &domain.Campaign{ID: id, Name: "flood relief fund 2026", Status: domain.CampaignStatusRunning}
}

func capturedEvent(eventOverride string, notes razorpay.OrderNotes) *razorpay.WebhookEvent {
	event := eventOverride
	if event == "" {
		event = "payment.captured"
	}
	return &razorpay.WebhookEvent{
		Entity:    "event",
		AccountID: "acc_test123",
		Event:     event,
		Payload: razorpay.EventPayload{
			Payment: &razorpay.PaymentWrapper{
				Entity: &razorpay.PaymentEntity{
					ID:       "pay_1",
					Entity:   "payment",
					Amount:   50000,
					Currency: "INR",
					Status:   statusForEvent(event),
					OrderID:  "order_X",
					Method:   "upi",
					Email:    "jane@example.com",
					Contact:  "+919999999999",
					Notes:    notes,
				},
			},
		},
	}
}

func statusForEvent(event string) string {
	switch event {
	case "payment.failed":
		return "failed"
	case "payment.authorized":
		return "authorized"
	}
	return "captured"
}

func TestInitiateDonationCreatesGatewayOrder(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	gateway := &fakeGateway{}
	service := NewService(repo, gateway, nil)

	order, err := service.InitiateDonation(context.Background(), domain.DonationOrderRequest{
		Amount:     50000,
		CampaignID: 3,
		ReferralID: "vol_jane_sharma",
		Donor:      domain.Donor{Name: "jane doe", Email: "jane@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "order_X" || order.Status != "created" {
		t.Fatalf("unexpected order: %+v", order)
	}

	params := gateway.lastParams
	if params == nil {
		t.Fatal("expected gateway order creation")
	}
	if params.Amount != 50000 || params.Currency != "INR" {
		t.Fatalf("unexpected order params: %+v", params)
	}
	if params.Receipt != "3-vol_jane_sharma" {
		t.Fatalf("unexpected receipt %q", params.Receipt)
	}
	if params.Notes["campaignId"] != "3" || params.Notes["referralId"] != "vol_jane_sharma" {
		t.Fatalf("expected identifiers bound into order notes, got %v", params.Notes)
	}
}

func TestInitiateDonationRejectsPausedCampaign(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = &domain.Campaign{ID: 3, Status: domain.CampaignStatusPaused}
	gateway := &fakeGateway{}
	service := NewService(repo, gateway, nil)

	_, err := service.InitiateDonation(context.Background(), domain.DonationOrderRequest{Amount: 100, CampaignID: 3, Donor: domain.Donor{Name: "jane doe"}})
	if !errors.Is(err, ErrCampaignNotAccepting) {
		t.Fatalf("expected ErrCampaignNotAccepting, got %v", err)
	}
	if gateway.lastParams != nil {
		t.Fatal("expected no gateway call for paused campaign")
	}
}

func TestInitiateDonationUnknownCampaign(t *testing.T) {
	service := NewService(newFakeRepository(), &fakeGateway{}, nil)

	_, err := service.InitiateDonation(context.Background(), domain.DonationOrderRequest{Amount: 100, CampaignID: 42, Donor: domain.Donor{Name: "jane doe"}})
	if !errors.Is(err, store.ErrCampaignNotFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestInitiateDonationGatewayFailureLeavesNoState(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	gateway := &fakeGateway{err: errors.New("gateway down")}
	service := NewService(repo, gateway, nil)

	_, err := service.InitiateDonation(context.Background(), domain.DonationOrderRequest{Amount: 100, CampaignID: 3, Donor: domain.Donor{Name: "jane doe"}})
	if err == nil {
		t.Fatal("expected error when gateway fails")
	}
	if len(repo.donations) != 0 {
		t.Fatal("expected no local persistence from initiation")
	}
}

func TestRecordPaymentEventCapturedAttributesReferrer(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	volunteer := &domain.User{ID: uuid.New(), Username: "vol_jane_sharma", Role: domain.RoleVolunteer}
	repo.users[volunteer.Username] = volunteer
	service := NewService(repo, &fakeGateway{}, nil)

	event := capturedEvent("", razorpay.OrderNotes{CampaignID: "3", ReferralID: "vol_jane_sharma"})
	donation, err := service.RecordPaymentEvent(context.Background(), "evt_1", event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if donation == nil {
		t.Fatal("expected recorded donation")
	}
	if donation.ReferrerID == nil || *donation.ReferrerID != volunteer.ID {
		t.Fatalf("expected referrer %s, got %v", volunteer.ID, donation.ReferrerID)
	}
	if donation.Status != domain.DonationStatusCaptured {
		t.Fatalf("expected captured status, got %q", donation.Status)
	}
	if donation.AccountID != "acc_test123" || donation.OrderID != "order_X" {
		t.Fatalf("unexpected donation fields: %+v", donation)
	}
}

func TestRecordPaymentEventCapturedWithoutReferrerStillSucceeds(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	service := NewService(repo, &fakeGateway{}, nil)

	event := capturedEvent("", razorpay.OrderNotes{CampaignID: "3", ReferralID: "vol_jane_sharma"})
	donation, err := service.RecordPaymentEvent(context.Background(), "evt_1", event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if donation.ReferrerID != nil {
		t.Fatalf("expected unattributed donation, got referrer %v", donation.ReferrerID)
	}
}

func TestRecordPaymentEventAuthorizedIsNotPersisted(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	service := NewService(repo, &fakeGateway{}, nil)

	event := capturedEvent("payment.authorized", razorpay.OrderNotes{CampaignID: "3"})
	donation, err := service.RecordPaymentEvent(context.Background(), "evt_1", event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if donation != nil {
		t.Fatalf("expected no donation for authorized event, got %+v", donation)
	}
	if len(repo.donations) != 0 {
		t.Fatal("expected nothing persisted for authorized event")
	}
}

func TestRecordPaymentEventFailedOutcomeIsRecorded(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	service := NewService(repo, &fakeGateway{}, nil)

	event := capturedEvent("payment.failed", razorpay.OrderNotes{CampaignID: "3"})
	donation, err := service.RecordPaymentEvent(context.Background(), "evt_1", event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if donation.Status != domain.DonationStatusFailed {
		t.Fatalf("expected failed status, got %q", donation.Status)
	}
}

func TestRecordPaymentEventMalformedShapes(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	service := NewService(repo, &fakeGateway{}, nil)

	tests := []struct {
		name  string
		event *razorpay.WebhookEvent
	}{
		{
			name:  "missing payment entity",
			event: &razorpay.WebhookEvent{Event: "payment.captured"},
		},
		{
			name:  "missing campaign note",
			event: capturedEvent("", razorpay.OrderNotes{ReferralID: "vol_jane_sharma"}),
		},
		{
			name:  "unrecognized event type",
			event: capturedEvent("refund.processed", razorpay.OrderNotes{CampaignID: "3"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.RecordPaymentEvent(context.Background(), "evt_1", tt.event)
			if !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("expected ErrMalformedEvent, got %v", err)
			}
			if len(repo.donations) != 0 {
				t.Fatal("expected nothing persisted for malformed event")
			}
		})
	}
}

func TestRecordPaymentEventDuplicateDeliveryRollsBack(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	service := NewService(repo, &fakeGateway{}, nil)

	event := capturedEvent("", razorpay.OrderNotes{CampaignID: "3", ReferralID: "vol_jane_sharma"})
	if _, err := service.RecordPaymentEvent(context.Background(), "evt_1", event); err != nil {
		t.Fatalf("unexpected error on first delivery: %v", err)
	}

	_, err := service.RecordPaymentEvent(context.Background(), "evt_1", event)
	if !errors.Is(err, store.ErrDuplicateDonation) {
		t.Fatalf("expected ErrDuplicateDonation, got %v", err)
	}
	if len(repo.donations) != 1 {
		t.Fatalf("expected exactly one donation record, got %d", len(repo.donations))
	}
}

func TestListDonationsScopesVolunteersToOwnReferrals(t *testing.T) {
	repo := newFakeRepository()
	repo.campaigns[3] = runningCampaign(3)
	volunteer := &domain.User{ID: uuid.New(), Username: "vol_jane_sharma", Role: domain.RoleVolunteer}
	repo.users[volunteer.Username] = volunteer
	service := NewService(repo, &fakeGateway{}, nil)

	attributed := capturedEvent("", razorpay.OrderNotes{CampaignID: "3", ReferralID: "vol_jane_sharma"})
	if _, err := service.RecordPaymentEvent(context.Background(), "evt_1", attributed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := capturedEvent("", razorpay.OrderNotes{CampaignID: "3"})
	other.Payload.Payment.Entity.OrderID = "order_Y"
	if _, err := service.RecordPaymentEvent(context.Background(), "evt_2", other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	all, err := service.ListDonations(context.Background(), admin, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected admin to see 2 donations, got %d", len(all))
	}

	own, err := service.ListDonations(context.Background(), volunteer, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("expected volunteer to see 1 donation, got %d", len(own))
	}
	if own[0].ReferrerID == nil || *own[0].ReferrerID != volunteer.ID {
		t.Fatal("expected volunteer's own referral only")
	}
}

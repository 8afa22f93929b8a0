/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the donation-service. By defining an interface,
 * we decouple the application's business logic from the specific database
 * implementation (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/sevasetu/donation-service/internal/domain"
)

// DonationFilter narrows donation listings. A nil ReferrerID returns all rows.
type DonationFilter struct {
	ReferrerID *uuid.UUID
	Limit      int
	Offset     int
}

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// Campaign methods
	FindCampaignByID(ctx context.Context, campaignID int64) (*domain.Campaign, error)
	CreateCampaign(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error)

	// Donation methods
	// RecordDonation resolves the referrer by username and inserts the donation
	// row inside one serializable read-write transaction. An unmatched referral
	// username leaves ReferrerID unset; a duplicate event or order id returns
	// ErrDuplicateDonation with the transaction rolled back.
	RecordDonation(ctx context.Context, donation *domain.Donation, referralUsername string) (*domain.Donation, error)
	ListDonations(ctx context.Context, filter DonationFilter) ([]domain.Donation, error)
}

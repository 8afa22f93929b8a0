/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to donations, campaigns, and users.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sevasetu/donation-service/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrDuplicateDonation = errors.New("donation already recorded for event")
	ErrDuplicateCampaign = errors.New("campaign slug already in use")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindUserByUsername retrieves a user by the handle embedded in referral links.
func (r *PostgresRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, username, first_name, last_name, role FROM users WHERE username = $1`
	err := r.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindCampaignByID retrieves a campaign by its numeric identifier.
func (r *PostgresRepository) FindCampaignByID(ctx context.Context, campaignID int64) (*domain.Campaign, error) {
	var campaign domain.Campaign
	query := `
		SELECT id, name, description, goal, status, slug, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, campaignID).Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Description,
		&campaign.Goal,
		&campaign.Status,
		&campaign.Slug,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// CreateCampaign inserts a new campaign and returns it with generated fields set.
func (r *PostgresRepository) CreateCampaign(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	query := `
		INSERT INTO campaigns (name, description, goal, status, slug)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		campaign.Name,
		campaign.Description,
		campaign.Goal,
		campaign.Status,
		campaign.Slug,
	).Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateCampaign
		}
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return campaign, nil
}

// RecordDonation durably records one webhook payment outcome. The referrer
// lookup and the insert share a serializable read-write transaction so a
// concurrent duplicate delivery cannot double-count: the unique constraints on
// event_id and order_id fail the second insert and the whole transaction rolls
// back.
func (r *PostgresRepository) RecordDonation(ctx context.Context, donation *domain.Donation, referralUsername string) (*domain.Donation, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if referralUsername != "" {
		var referrerID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, referralUsername).Scan(&referrerID)
		switch {
		case err == nil:
			donation.ReferrerID = &referrerID
		case errors.Is(err, pgx.ErrNoRows):
			// No matching volunteer. The donation is still recorded, unattributed.
		default:
			return nil, fmt.Errorf("referrer lookup failed: %w", err)
		}
	}

	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}

	query := `
		INSERT INTO donations (
			id, event_id, account_id, campaign_id, order_id, referrer_id,
			amount, status, currency, email, contact, method
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		donation.ID,
		donation.EventID,
		donation.AccountID,
		donation.CampaignID,
		donation.OrderID,
		donation.ReferrerID,
		donation.Amount,
		donation.Status,
		donation.Currency,
		donation.Email,
		donation.Contact,
		donation.Method,
	).Scan(&donation.CreatedAt, &donation.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return nil, ErrDuplicateDonation
			case pgForeignKeyViolation:
				return nil, ErrCampaignNotFound
			}
		}
		return nil, fmt.Errorf("donation insert failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit donation: %w", err)
	}
	return donation, nil
}

// ListDonations returns recorded donations, newest first. The filter scopes
// volunteers to their own referrals.
func (r *PostgresRepository) ListDonations(ctx context.Context, filter DonationFilter) ([]domain.Donation, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, event_id, account_id, campaign_id, order_id, referrer_id,
		       amount, status, currency, email, contact, method, created_at, updated_at
		FROM donations
		WHERE ($1::uuid IS NULL OR referrer_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, filter.ReferrerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(
			&d.ID,
			&d.EventID,
			&d.AccountID,
			&d.CampaignID,
			&d.OrderID,
			&d.ReferrerID,
			&d.Amount,
			&d.Status,
			&d.Currency,
			&d.Email,
			&d.Contact,
			&d.Method,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan donation row: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return donations, nil
}

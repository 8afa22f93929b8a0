package domain

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CampaignStatus gates whether a campaign accepts new donations.
type CampaignStatus string

const (
	CampaignStatusRunning CampaignStatus = "running"
	CampaignStatusPaused  CampaignStatus = "paused"
)

// Campaign is a fundraising drive administrators create and volunteers share.
type Campaign struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Goal        int64          `json:"goal"` // in whole INR
	Status      CampaignStatus `json:"status"`
	Slug        string         `json:"slug"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateCampaignRequest is the DTO for the admin campaign creation endpoint.
type CreateCampaignRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Goal        int64  `json:"goal"`
	Slug        string `json:"slug"`
}

// Validate enforces the campaign field constraints.
func (r CreateCampaignRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(16, 128)),
		validation.Field(&r.Description, validation.Required, validation.Length(1, 2000)),
		validation.Field(&r.Goal, validation.Required, validation.Min(int64(1)), validation.Max(maxSafeInteger)),
		validation.Field(&r.Slug, validation.Required, validation.Match(slugPattern)),
	)
}

package domain

import (
	"regexp"

	"github.com/google/uuid"
)

// User roles. Volunteers share referral links; admins manage campaigns.
const (
	RoleAdmin     = "admin"
	RoleVolunteer = "volunteer"
)

// usernamePattern matches the handle embedded in shared referral links.
var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{12,24}$`)

// User represents an account that can administer campaigns or refer donations.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

// ValidUsername reports whether a handle satisfies the username rules.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

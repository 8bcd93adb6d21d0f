// Package patient handles portal identity: mapping external auth identities
// onto portal users and their patient profiles.
package patient

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a user or patient profile does not exist.
var ErrNotFound = errors.New("patient: not found")

// Identity is the subset of the external identity provider's session claims
// the portal cares about.
type Identity struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// DisplayName builds the portal display name from the identity claims.
// Falls back to "User" when the provider sends no name at all.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.GivenName + " " + i.FamilyName)
	if name == "" {
		return "User"
	}
	return name
}

// User is a portal account row. One account can later hold either a patient
// or a doctor profile; this service always provisions the patient side.
type User struct {
	UID        string    `json:"uid"`
	AuthID     string    `json:"auth_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	LastLogin  time.Time `json:"last_login"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Profile is the patient profile attached to a user account.
type Profile struct {
	PID       string    `json:"pid"`
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
}

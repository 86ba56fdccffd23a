// Package record defines the common types for GetQuicker user data extraction.
package record

import (
	"errors"
)

// Common errors returned by extraction and fetch layers.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoFields        = errors.New("no profile fields extracted")
	ErrNoTable         = errors.New("no actions table found")
)

// Profile represents data extracted from a GetQuicker user profile page.
// Fields that could not be resolved keep their zero value; a partially
// filled Profile is a valid result.
type Profile struct {
	UserID           string `json:"user_id"`
	URL              string `json:"url"`
	Username         string `json:"username,omitempty"`
	ReferralCode     string `json:"referral_code,omitempty"`
	RegistrationDays int    `json:"registration_days,omitempty"` // days since registration
	IsPro            bool   `json:"is_pro"`
	Authenticated    bool   `json:"authenticated,omitempty"` // whether login cookies were used
}

// Empty reports whether no field could be extracted at all. The pro flag
// only counts when set: a missing marker element is indistinguishable from
// a regular account.
func (p *Profile) Empty() bool {
	return p.Username == "" && p.ReferralCode == "" && p.RegistrationDays == 0 && !p.IsPro
}

// Complete reports whether every resolvable field was extracted. IsPro is
// excluded: it is marker-based and false is a legitimate result.
func (p *Profile) Complete() bool {
	return p.Username != "" && p.ReferralCode != "" && p.RegistrationDays > 0
}

// Action represents one row of a user's shared-actions table.
type Action struct {
	Title       string `json:"name"`
	Description string `json:"description,omitempty"`
	Applicable  string `json:"applicable,omitempty"` // target application (e.g. "所有程序")
	Author      string `json:"author,omitempty"`
	Size        string `json:"size,omitempty"`
	Likes       int    `json:"likes"`
	Downloads   int    `json:"downloads"`
	Frequency   string `json:"frequency,omitempty"` // update frequency label
}

// AuthorRef identifies a recommended author discovered on the share listing.
type AuthorRef struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

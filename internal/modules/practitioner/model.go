package practitioner

import (
	"time"

	"github.com/google/uuid"
)

// Onboarding holds the per-practitioner onboarding checklist.
type Onboarding struct {
	Onboarded bool `json:"onboarded"`
	Training  bool `json:"training"`
	Website   bool `json:"website"`
	WhatsApp  bool `json:"whatsapp"`
	EngageBay bool `json:"engagebay"`
}

type Practitioner struct {
	ID                  uuid.UUID  `json:"id"`
	Provider            string     `json:"provider"`
	Title               string     `json:"title,omitempty"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Email               string     `json:"email,omitempty"`
	Phone               string     `json:"phone,omitempty"`
	Occupation          string     `json:"occupation,omitempty"`
	City                string     `json:"city,omitempty"`
	Province            string     `json:"province,omitempty"`
	PostalCode          string     `json:"postal_code,omitempty"`
	RegisteredWithBoard bool       `json:"registered_with_board"`
	Interests           string     `json:"-"`
	InterestList        []string   `json:"interests"`
	Notes               string     `json:"notes,omitempty"`
	SignedUp            *time.Time `json:"signed_up,omitempty"`
	Onboarding
	CreatedAt time.Time `json:"created_at"`
}

func (p *Practitioner) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Totals counts practitioners by onboarding state.
type Totals struct {
	Total     int `json:"total"`
	Onboarded int `json:"onboarded"`
	Pending   int `json:"pending"`
}

type ProviderGroup struct {
	Provider      string          `json:"provider"`
	Practitioners []*Practitioner `json:"practitioners"`
}

// Buckets splits practitioners into pending and onboarded, each grouped by provider.
type Buckets struct {
	Pending   []*ProviderGroup `json:"pending"`
	Completed []*ProviderGroup `json:"completed"`
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// Storage keys of the persisted documents
const (
	LeadsKey     = "dream_digital_leads"
	AnalyticsKey = "dream_digital_analytics"
	SessionKey   = "dream_digital_session"
	ConsentKey   = "cookieConsent"
)

// LeadStatus is the operator-managed pipeline state of a lead
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
)

// LeadStatuses lists every status in dashboard order
var LeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadConverted, LeadLost}

// Valid reports whether s is one of the four known statuses
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadConverted, LeadLost:
		return true
	}
	return false
}

// Label is the human readable status name
func (s LeadStatus) Label() string {
	switch s {
	case LeadNew:
		return "New"
	case LeadContacted:
		return "Contacted"
	case LeadConverted:
		return "Converted"
	case LeadLost:
		return "Lost"
	}
	return string(s)
}

// ParseLeadStatus accepts a status name in any case
func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := LeadStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid lead status %q (valid: new, contacted, converted, lost)", raw)
	}
	return s, nil
}

// Lead is one captured contact request.
// SubmittedAt is persisted under "date" to stay compatible with existing ledgers.
type Lead struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Phone       string     `json:"phone" yaml:"phone"`
	Email       string     `json:"email" yaml:"email"`
	PricingType string     `json:"pricingType" yaml:"pricing_type"`
	SubmittedAt time.Time  `json:"date" yaml:"date"`
	Status      LeadStatus `json:"status" yaml:"status"`
}

// EmailOrDefault returns the email or the "Not provided" placeholder
func (l Lead) EmailOrDefault() string {
	if l.Email == "" {
		return "Not provided"
	}
	return l.Email
}

// PricingOrDefault returns the pricing type or the "Not selected" placeholder
func (l Lead) PricingOrDefault() string {
	if l.PricingType == "" {
		return "Not selected"
	}
	return l.PricingType
}

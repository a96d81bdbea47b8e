package leads

import (
	"time"

	"github.com/dreamdigital/landing/internal/models"
)

// Stats summarizes the ledger for the lead dashboard
type Stats struct {
	Total     int `json:"total" yaml:"total"`
	New       int `json:"new" yaml:"new"`
	Contacted int `json:"contacted" yaml:"contacted"`
	Converted int `json:"converted" yaml:"converted"`
	Lost      int `json:"lost" yaml:"lost"`
	ThisMonth int `json:"thisMonth" yaml:"this_month"`
	ThisWeek  int `json:"thisWeek" yaml:"this_week"`
}

// ComputeStats counts leads per status and those submitted in the calendar
// month and ISO week containing now
func ComputeStats(all []models.Lead, now time.Time) Stats {
	year, week := now.ISOWeek()
	s := Stats{Total: len(all)}
	for _, lead := range all {
		switch lead.Status {
		case models.LeadNew:
			s.New++
		case models.LeadContacted:
			s.Contacted++
		case models.LeadConverted:
			s.Converted++
		case models.LeadLost:
			s.Lost++
		}

		at := lead.SubmittedAt.In(now.Location())
		if at.Year() == now.Year() && at.Month() == now.Month() {
			s.ThisMonth++
		}
		if y, w := at.ISOWeek(); y == year && w == week {
			s.ThisWeek++
		}
	}
	return s
}

// Count returns the number of leads with status
func (s Stats) Count(status models.LeadStatus) int {
	switch status {
	case models.LeadNew:
		return s.New
	case models.LeadContacted:
		return s.Contacted
	case models.LeadConverted:
		return s.Converted
	case models.LeadLost:
		return s.Lost
	}
	return 0
}

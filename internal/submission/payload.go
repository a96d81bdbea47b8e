package submission

import (
	"fmt"
	"time"

	"github.com/dreamdigital/landing/internal/models"
)

// messageTimeLayout matches en-US locale formatting, e.g. 3/14/2025, 9:30:00 AM
const messageTimeLayout = "1/2/2006, 3:04:05 PM"

// Payload is the template data sent to the relay
type Payload struct {
	FromName    string `json:"from_name"`
	FromPhone   string `json:"from_phone"`
	FromEmail   string `json:"from_email"`
	PricingType string `json:"pricing_type"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
}

// NewPayload composes the relay payload for req at time at
func NewPayload(req Request, at time.Time) Payload {
	lead := models.Lead{Email: req.Email, PricingType: req.PricingType}
	message := fmt.Sprintf(`New request from DREAM DIGITAL website:

Name/Company: %s
Phone/WhatsApp: %s
Email: %s
Pricing Type: %s

Date: %s`, req.Name, req.Phone, lead.EmailOrDefault(), lead.PricingOrDefault(), at.Format(messageTimeLayout))

	return Payload{
		FromName:    req.Name,
		FromPhone:   req.Phone,
		FromEmail:   req.Email,
		PricingType: req.PricingType,
		Message:     message,
		Timestamp:   at.UTC().Format(time.RFC3339),
	}
}

package submission

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
)

// EmailJSRelay sends template emails through the EmailJS REST API.
// The channel passed to Send is the template id.
type EmailJSRelay struct {
	Endpoint   string
	ServiceID  string
	PublicKey  string
	PrivateKey string
	Client     *fasthttp.Client
}

type emailJSRequest struct {
	ServiceID      string  `json:"service_id"`
	TemplateID     string  `json:"template_id"`
	UserID         string  `json:"user_id"`
	AccessToken    string  `json:"accessToken,omitempty"`
	TemplateParams Payload `json:"template_params"`
}

// NewEmailJSRelay returns a relay using a shared fasthttp client
func NewEmailJSRelay(endpoint, serviceID, publicKey, privateKey string) *EmailJSRelay {
	return &EmailJSRelay{
		Endpoint:   endpoint,
		ServiceID:  serviceID,
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		Client:     newClient(),
	}
}

func (r *EmailJSRelay) Send(ctx context.Context, channel string, payload Payload) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      r.ServiceID,
		TemplateID:     channel,
		UserID:         r.PublicKey,
		AccessToken:    r.PrivateKey,
		TemplateParams: payload,
	})
	if err != nil {
		return fmt.Errorf("encode emailjs request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := do(ctx, r.Client, req, resp); err != nil {
		return fmt.Errorf("emailjs request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("emailjs returned status %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

// LogRelay writes payloads to the log instead of sending them
type LogRelay struct{}

func (LogRelay) Send(_ context.Context, channel string, payload Payload) error {
	logging.L().Info("relay disabled, logging submission",
		zap.String("channel", channel),
		zap.String("from_name", payload.FromName),
		zap.String("from_phone", payload.FromPhone),
		zap.String("pricing_type", payload.PricingType),
	)
	return nil
}

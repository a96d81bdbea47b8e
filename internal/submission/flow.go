// Package submission runs a contact request through bot verification and the
// mail relay before recording it.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/models"
)

var (
	ErrInvalidRequest     = errors.New("invalid submission")
	ErrVerificationFailed = errors.New("bot verification failed")
	ErrRelayFailed        = errors.New("mail relay failed")
)

const maxFieldLength = 200

// Request is a contact form submission
type Request struct {
	Name        string `json:"name" form:"name"`
	Phone       string `json:"phone" form:"phone"`
	Email       string `json:"email" form:"email"`
	PricingType string `json:"pricingType" form:"pricingType"`
	Token       string `json:"token" form:"token"`
	RemoteIP    string `json:"-" form:"-"`
}

// Verifier checks a bot-verification token
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Relay delivers a payload over a channel, such as a mail template
type Relay interface {
	Send(ctx context.Context, channel string, payload Payload) error
}

// LeadAppender is the ledger side of a successful submission
type LeadAppender interface {
	Append(ctx context.Context, lead models.Lead) models.Lead
}

// SubmissionRecorder is the analytics side of a successful submission
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context)
}

// Option configures a Flow
type Option func(*Flow)

// WithTimeout bounds each outbound call
func WithTimeout(d time.Duration) Option {
	return func(f *Flow) { f.timeout = d }
}

// WithChannel sets the relay channel
func WithChannel(channel string) Option {
	return func(f *Flow) { f.channel = channel }
}

// WithClock overrides the time source used for the message timestamp
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// Flow is the submission pipeline: validate, verify, relay, record
type Flow struct {
	verifier  Verifier
	relay     Relay
	ledger    LeadAppender
	analytics SubmissionRecorder

	channel string
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// NewFlow wires the pipeline. Leads and analytics are only written after
// the relay accepted the message.
func NewFlow(verifier Verifier, relay Relay, ledger LeadAppender, analytics SubmissionRecorder, opts ...Option) *Flow {
	f := &Flow{
		verifier:  verifier,
		relay:     relay,
		ledger:    ledger,
		analytics: analytics,
		timeout:   15 * time.Second,
		now:       time.Now,
		log:       logging.Named("submission"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit runs one attempt. There is no retry; callers resubmit.
func (f *Flow) Submit(ctx context.Context, req Request) (models.Lead, error) {
	req = normalize(req)
	if err := validate(req); err != nil {
		return models.Lead{}, err
	}

	ok, err := f.verify(ctx, req)
	if err != nil || !ok {
		f.log.Warn("submission rejected by bot verification", zap.Error(err))
		return models.Lead{}, ErrVerificationFailed
	}

	payload := NewPayload(req, f.now())
	if err := f.send(ctx, payload); err != nil {
		f.log.Error("relay failed, submission dropped", zap.Error(err))
		return models.Lead{}, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}

	lead := f.ledger.Append(ctx, models.Lead{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		PricingType: req.PricingType,
	})
	f.analytics.RecordSubmission(ctx)
	return lead, nil
}

func (f *Flow) verify(ctx context.Context, req Request) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.verifier.Verify(ctx, req.Token, req.RemoteIP)
}

func (f *Flow) send(ctx context.Context, payload Payload) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.relay.Send(ctx, f.channel, payload)
}

func normalize(req Request) Request {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.PricingType = strings.TrimSpace(req.PricingType)
	return req
}

func validate(req Request) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if req.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidRequest)
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return fmt.Errorf("%w: email is malformed", ErrInvalidRequest)
	}
	for field, v := range map[string]string{"name": req.Name, "phone": req.Phone, "email": req.Email, "pricingType": req.PricingType} {
		if utf8.RuneCountInString(v) > maxFieldLength {
			return fmt.Errorf("%w: %s is too long", ErrInvalidRequest, field)
		}
	}
	return nil
}

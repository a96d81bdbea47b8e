package submission

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamdigital/landing/internal/analytics"
	"github.com/dreamdigital/landing/internal/leads"
	"github.com/dreamdigital/landing/internal/models"
	"github.com/dreamdigital/landing/internal/storage"
)

type stubVerifier struct {
	pass  bool
	err   error
	calls int
}

func (s *stubVerifier) Verify(_ context.Context, token, _ string) (bool, error) {
	s.calls++
	return s.pass, s.err
}

type stubRelay struct {
	err      error
	channels []string
	payloads []Payload
}

func (s *stubRelay) Send(_ context.Context, channel string, p Payload) error {
	s.channels = append(s.channels, channel)
	s.payloads = append(s.payloads, p)
	return s.err
}

type harness struct {
	store    *storage.Memory
	ledger   *leads.Ledger
	agg      *analytics.Aggregator
	verifier *stubVerifier
	relay    *stubRelay
	flow     *Flow
}

var fixedNow = time.Date(2025, 3, 14, 21, 5, 9, 0, time.UTC)

func newHarness() *harness {
	h := &harness{
		store:    storage.NewMemory(),
		verifier: &stubVerifier{pass: true},
		relay:    &stubRelay{},
	}
	h.ledger = leads.NewLedger(h.store)
	h.agg = analytics.New(h.store)
	h.flow = NewFlow(h.verifier, h.relay, h.ledger, h.agg,
		WithChannel("template_contact"),
		WithClock(func() time.Time { return fixedNow }),
	)
	return h
}

var validRequest = Request{Name: " Acme Corp ", Phone: "555-0100", PricingType: "standard", Token: "tok"}

func TestSubmitSuccess(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	lead, err := h.flow.Submit(ctx, validRequest)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", lead.Name)
	assert.Equal(t, models.LeadNew, lead.Status)
	assert.NotEmpty(t, lead.ID)

	require.Len(t, h.relay.payloads, 1)
	assert.Equal(t, []string{"template_contact"}, h.relay.channels)
	assert.Equal(t, "Acme Corp", h.relay.payloads[0].FromName)

	all := h.ledger.ListAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, lead.ID, all[0].ID)
	assert.Equal(t, 1, h.agg.Snapshot(ctx).TotalSubmissions)
}

func TestVerificationFailureStopsEverything(t *testing.T) {
	for name, v := range map[string]*stubVerifier{
		"rejected":  {pass: false},
		"api error": {pass: true, err: errors.New("timeout")},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness()
			h.verifier.pass, h.verifier.err = v.pass, v.err

			_, err := h.flow.Submit(ctx, validRequest)
			require.ErrorIs(t, err, ErrVerificationFailed)
			assert.Empty(t, h.relay.payloads)
			assert.Empty(t, h.ledger.ListAll(ctx))
			assert.Empty(t, h.store.Keys())
		})
	}
}

func TestRelayFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.relay.err = errors.New("502 bad gateway")

	_, err := h.flow.Submit(ctx, validRequest)
	require.ErrorIs(t, err, ErrRelayFailed)
	assert.Contains(t, err.Error(), "502")
	assert.Empty(t, h.ledger.ListAll(ctx))
	assert.Zero(t, h.agg.Snapshot(ctx).TotalSubmissions)
	assert.Empty(t, h.store.Keys())
}

func TestInvalidRequests(t *testing.T) {
	tests := map[string]Request{
		"missing name": {Phone: "1", Token: "t"},
		"blank phone":  {Name: "a", Phone: "   ", Token: "t"},
		"bad email":    {Name: "a", Phone: "1", Email: "nope", Token: "t"},
		"long name":    {Name: strings.Repeat("x", maxFieldLength+1), Phone: "1", Token: "t"},
		"long pricing": {Name: "a", Phone: "1", PricingType: strings.Repeat("p", maxFieldLength+1), Token: "t"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			_, err := h.flow.Submit(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Zero(t, h.verifier.calls)
		})
	}
}

type slowRelay struct{}

func (slowRelay) Send(ctx context.Context, _ string, _ Payload) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRelayTimeout(t *testing.T) {
	h := newHarness()
	flow := NewFlow(h.verifier, slowRelay{}, h.ledger, h.agg, WithTimeout(20*time.Millisecond))

	_, err := flow.Submit(context.Background(), validRequest)
	require.ErrorIs(t, err, ErrRelayFailed)
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
}

func TestNewPayloadMessage(t *testing.T) {
	p := NewPayload(Request{Name: "Acme", Phone: "555-0100"}, fixedNow)

	assert.Equal(t, "Acme", p.FromName)
	assert.Equal(t, "", p.FromEmail)
	assert.Equal(t, "2025-03-14T21:05:09Z", p.Timestamp)

	want := "New request from DREAM DIGITAL website:\n\n" +
		"Name/Company: Acme\n" +
		"Phone/WhatsApp: 555-0100\n" +
		"Email: Not provided\n" +
		"Pricing Type: Not selected\n\n" +
		"Date: 3/14/2025, 9:05:09 PM"
	assert.Equal(t, want, p.Message)
}

func TestTokenVerifier(t *testing.T) {
	ok, err := TokenVerifier{}.Verify(context.Background(), "abc", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = TokenVerifier{}.Verify(context.Background(), "", "")
	assert.False(t, ok)
}

func TestLogRelay(t *testing.T) {
	assert.NoError(t, LogRelay{}.Send(context.Background(), "c", Payload{FromName: "a"}))
}

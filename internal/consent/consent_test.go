package consent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamdigital/landing/internal/models"
	"github.com/dreamdigital/landing/internal/storage"
)

func TestGetDefaults(t *testing.T) {
	s := NewStore(storage.NewMemory())
	got := s.Get(context.Background(), "v1")
	assert.Equal(t, models.DefaultConsent(), got)
	assert.False(t, s.Decided(context.Background(), "v1"))
}

func TestUpdateForcesNecessary(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem)

	saved, err := s.Update(ctx, "v1", models.CookieConsent{Analytics: true, Advertising: true})
	require.NoError(t, err)
	assert.True(t, saved.Necessary)

	got := s.Get(ctx, "v1")
	assert.Equal(t, models.CookieConsent{Necessary: true, Analytics: true, Advertising: true}, got)
	assert.True(t, s.Decided(ctx, "v1"))

	// Visitors are independent
	assert.Equal(t, models.DefaultConsent(), s.Get(ctx, "v2"))
	assert.ElementsMatch(t, []string{"cookieConsent:v1"}, mem.Keys())
}

func TestMalformedConsentYieldsDefaults(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, Key(""), []byte("not json")))

	assert.Equal(t, models.DefaultConsent(), NewStore(mem).Get(ctx, ""))
}

func TestMalformedConsentIsUndecided(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem)
	require.NoError(t, mem.Set(ctx, Key("v1"), []byte("{not json")))

	assert.False(t, s.Decided(ctx, "v1"))
	assert.Equal(t, models.DefaultConsent(), s.Get(ctx, "v1"))

	_, err := s.Update(ctx, "v1", models.CookieConsent{Analytics: true})
	require.NoError(t, err)
	assert.True(t, s.Decided(ctx, "v1"))
	assert.True(t, s.Get(ctx, "v1").Analytics)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cookieConsent", Key(""))
	assert.Equal(t, "cookieConsent:abc", Key("abc"))
}

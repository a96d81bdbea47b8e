package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dreamdigital/landing/internal/config"
	"github.com/dreamdigital/landing/internal/storage"
)

func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fnErr := fn()

	_ = w.Close()
	os.Stdout = originalStdout

	output, readErr := io.ReadAll(r)
	require.NoError(t, readErr)
	_ = r.Close()

	return string(output), fnErr
}

// stubServices points every command at one shared in-memory store
func stubServices(t *testing.T) (*config.Config, *storage.Memory) {
	t.Helper()

	cfg := &config.Config{
		Port:           "3000",
		DataDir:        t.TempDir(),
		Storage:        config.StorageMemory,
		TableName:      "landing_kv",
		SessionTimeout: 30 * time.Minute,
		ProxyMode:      "none",
		Admin: config.AdminConfig{
			JWTSecret: "cli-test-secret",
			TokenTTL:  time.Hour,
		},
		RelayTimeout: time.Second,
	}
	mem := storage.NewMemory()

	originalLoad := loadConfig
	originalOpen := openStorage
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	openStorage = func(ctx context.Context, c *config.Config) (storage.Storage, error) { return mem, nil }
	t.Cleanup(func() {
		loadConfig = originalLoad
		openStorage = originalOpen
	})
	return cfg, mem
}

func stubTerminal(t *testing.T, interactive bool, input string) {
	t.Helper()
	originalTerminal := stdinIsTerminal
	originalInput := confirmInput
	stdinIsTerminal = func() bool { return interactive }
	confirmInput = strings.NewReader(input)
	t.Cleanup(func() {
		stdinIsTerminal = originalTerminal
		confirmInput = originalInput
	})
}

func stubNow(t *testing.T, now time.Time) {
	t.Helper()
	original := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = original })
}

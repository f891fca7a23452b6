package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"DATABASE_URL=postgres://localhost/test\nJWT_SECRET=secret\nGATEWAY_SECRET_KEY=sk_test\nKAFKA_BROKERS=a:9092, b:9092\n",
	), 0o600))

	for _, k := range []string{"DATABASE_URL", "JWT_SECRET", "GATEWAY_SECRET_KEY", "KAFKA_BROKERS", "GATEWAY_WEBHOOK_SECRET"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg := Load(path)
	require.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
	require.Equal(t, []byte("secret"), cfg.JWTAccessSecret)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "sk_test", cfg.WebhookSecret())

	t.Setenv("GATEWAY_WEBHOOK_SECRET", "whsec")
	require.Equal(t, "whsec", Load(path).WebhookSecret())

	for _, k := range []string{"DATABASE_URL", "JWT_SECRET", "GATEWAY_SECRET_KEY", "KAFKA_BROKERS"} {
		require.NoError(t, os.Unsetenv(k))
	}
}

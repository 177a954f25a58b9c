package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClients(t *testing.T) {
	seeds, err := ParseClients("client1:password1:admin|ops, client2:password2:read-only,client3:s3cret")
	require.NoError(t, err)
	require.Len(t, seeds, 3)

	assert.Equal(t, "client1", seeds[0].ClientID)
	assert.Equal(t, "password1", seeds[0].Secret)
	assert.Equal(t, []string{"admin", "ops"}, seeds[0].Roles)
	assert.Equal(t, []string{"read-only"}, seeds[1].Roles)
	assert.Empty(t, seeds[2].Roles)
	assert.NotNil(t, seeds[2].Roles)
}

func TestParseClientsRejectsBadEntries(t *testing.T) {
	for _, raw := range []string{"client1", ":secret:admin", "client1::admin", "a:b,a:c"} {
		_, err := ParseClients(raw)
		assert.Error(t, err, raw)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("API_CLIENTS", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "/api/v1", cfg.APIBasePath)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	require.Len(t, cfg.Clients, 2)
	assert.Equal(t, []string{"admin"}, cfg.Clients[0].Roles)
}

func TestLoadProductionRequiresSecretAndClients(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("API_CLIENTS", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("API_CLIENTS", "svc:secret:admin")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "prod-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
}

func TestLoadPostgresNeedsDatabase(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadTokenTTLAcceptsSeconds(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("API_CLIENTS", "")

	t.Setenv("TOKEN_TTL", "3600")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.TokenTTL)

	t.Setenv("TOKEN_TTL", "90m")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)

	t.Setenv("TOKEN_TTL", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("TOKEN_TTL", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadAuthLimitDisabledByDefault(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("API_CLIENTS", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("AUTH_MAX_FAILURES", "")
	t.Setenv("AUTH_FAILURE_WINDOW", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.AuthLimit.MaxFailures)
	assert.Equal(t, time.Minute, cfg.AuthLimit.Window)

	t.Setenv("AUTH_MAX_FAILURES", "5")
	t.Setenv("AUTH_FAILURE_WINDOW", "30")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.AuthLimit.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.AuthLimit.Window)
}

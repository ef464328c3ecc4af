package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxform/internal/config"
	"voxform/internal/service"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{Secret: "test-secret", Issuer: "voxform-test", TokenTTL: time.Hour}
}

func TestSessionTokens_RoundTrip(t *testing.T) {
	tokens := service.NewSessionTokens(testSessionConfig())
	id := uuid.New().String()

	token, exp, err := tokens.Issue(id)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	got, isNew := tokens.Resolve(token)
	assert.False(t, isNew)
	assert.Equal(t, id, got)
}

func TestSessionTokens_InvalidTokenMintsSession(t *testing.T) {
	tokens := service.NewSessionTokens(testSessionConfig())

	id, isNew := tokens.Resolve("garbage")
	assert.True(t, isNew)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	id2, isNew := tokens.Resolve("")
	assert.True(t, isNew)
	assert.NotEqual(t, id, id2)
}

func TestSessionTokens_WrongSecretRejected(t *testing.T) {
	other := testSessionConfig()
	other.Secret = "other-secret"
	token, _, err := service.NewSessionTokens(other).Issue(uuid.New().String())
	require.NoError(t, err)

	_, err = service.NewSessionTokens(testSessionConfig()).Validate(token)
	assert.Error(t, err)
}

func TestSessionTokens_Expired(t *testing.T) {
	cfg := testSessionConfig()
	cfg.TokenTTL = -time.Minute
	tokens := service.NewSessionTokens(cfg)
	token, _, err := tokens.Issue(uuid.New().String())
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.Error(t, err)
}

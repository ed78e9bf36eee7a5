package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("topsecret", time.Hour)

	token, exp, err := m.GenerateServiceToken("manager")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseServiceToken(token)
	require.NoError(t, err)
	assert.Equal(t, "manager", claims.Service)
}

func TestServiceTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).GenerateServiceToken("manager")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ParseServiceToken(token)
	assert.Error(t, err)
}

func TestServiceTokenRejectsExpired(t *testing.T) {
	token, _, err := NewJWTManager("topsecret", -time.Minute).GenerateServiceToken("manager")
	require.NoError(t, err)

	_, err = NewJWTManager("topsecret", -time.Minute).ParseServiceToken(token)
	assert.Error(t, err)
}

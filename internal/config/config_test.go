package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 0.8, cfg.AutoApproveThreshold)
	assert.Equal(t, 2*time.Second, cfg.AutoApproveDelay)
	assert.Equal(t, 7*24*time.Hour, cfg.DisputeDeadline)
	assert.Equal(t, 48*time.Hour, cfg.MediationLeadTime)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Len(t, cfg.Mediators, 1)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnknownStoreDriver(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTO_APPROVE_THRESHOLD", "1.5")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseMediators(t *testing.T) {
	mediators, err := ParseMediators("m1:Anna Petrova, m2:Ivan")
	require.NoError(t, err)
	assert.Equal(t, []Mediator{{ID: "m1", Name: "Anna Petrova"}, {ID: "m2", Name: "Ivan"}}, mediators)

	_, err = ParseMediators("broken")
	assert.Error(t, err)
}

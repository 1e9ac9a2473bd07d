package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "Europe/Oslo", cfg.Timezone)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, []string{"NO1", "NO2", "NO3", "NO4", "NO5"}, cfg.SpotPrice.Areas)
	assert.InDelta(t, 45.0, cfg.Tariff.DefaultRateOre, 1e-9)
	assert.False(t, cfg.Tariff.FallbackApplyTax)
	assert.Equal(t, 4, cfg.Pricing.Workers)
	assert.False(t, cfg.MqttEnabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("SPOT_PRICE_AREAS", "NO1,NO5")
	t.Setenv("SPOT_PRICE_TIMEOUT", "3s")
	t.Setenv("TARIFF_DEFAULT_RATE_ORE", "38.5")
	t.Setenv("TARIFF_FALLBACK_APPLY_TAX", "true")
	t.Setenv("MQTT_HOST", "tcp://broker:1883")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, []string{"NO1", "NO5"}, cfg.SpotPrice.Areas)
	assert.Equal(t, 3*time.Second, cfg.SpotPrice.Timeout)
	assert.InDelta(t, 38.5, cfg.Tariff.DefaultRateOre, 1e-9)
	assert.True(t, cfg.Tariff.FallbackApplyTax)
	assert.True(t, cfg.MqttEnabled())
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PRICING_WORKERS", "many")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PRICING_WORKERS", "2")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	cfg, err := Load()
	require.NoError(t, err)
	_, err = cfg.Location()
	assert.Error(t, err)
}

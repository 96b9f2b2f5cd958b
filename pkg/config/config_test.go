package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "almacen-api", cfg.App.Name)
	assert.False(t, cfg.DB.Enabled(), "sin DB_HOST ni DATABASE_URL se usa el store en memoria")
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15, cfg.Recon.GraceDays)
	assert.InDelta(t, 5.0, cfg.Recon.WeightTolerancePct, 0.001)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.interna")
	t.Setenv("DB_PASSWORD", "p@ss:word/rara")
	t.Setenv("RECON_GRACE_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.DB.Enabled())
	assert.Equal(t, 30, cfg.Recon.GraceDays)
	// El DSN debe escapar los caracteres especiales de la contraseña.
	assert.Contains(t, cfg.DB.DSN(), "db.interna")
	assert.NotContains(t, cfg.DB.DSN(), "p@ss:word/rara")
}

func TestHTTPConfig_Addr(t *testing.T) {
	c := HTTPConfig{Host: "127.0.0.1", Port: 9090}
	assert.Equal(t, "127.0.0.1:9090", c.Addr())
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("missing APP_HOST", func(t *testing.T) {
		_, err := LoadFromEnv(lookupFrom(map[string]string{"APP_PORT": "8080"}))
		assert.Error(t, err)
	})

	t.Run("missing APP_PORT", func(t *testing.T) {
		_, err := LoadFromEnv(lookupFrom(map[string]string{"APP_HOST": "0.0.0.0"}))
		assert.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg, err := LoadFromEnv(lookupFrom(map[string]string{
			"APP_HOST": "0.0.0.0",
			"APP_PORT": "8080",
		}))
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
		assert.Equal(t, "localhost", cfg.BrokerHost)
		assert.Equal(t, 5672, cfg.BrokerPort)
		assert.Equal(t, "/", cfg.BrokerVhost)
	})

	t.Run("broker overrides", func(t *testing.T) {
		cfg, err := LoadFromEnv(lookupFrom(map[string]string{
			"APP_HOST":     "0.0.0.0",
			"APP_PORT":     "8080",
			"BROKER_HOST":  "broker.internal",
			"BROKER_PORT":  "5671",
			"BROKER_VHOST": "prod",
		}))
		require.NoError(t, err)
		assert.Equal(t, "broker.internal", cfg.BrokerHost)
		assert.Equal(t, 5671, cfg.BrokerPort)
		assert.Equal(t, "prod", cfg.BrokerVhost)
	})

	t.Run("non-numeric broker port", func(t *testing.T) {
		_, err := LoadFromEnv(lookupFrom(map[string]string{
			"APP_HOST":    "0.0.0.0",
			"APP_PORT":    "8080",
			"BROKER_PORT": "not-a-port",
		}))
		assert.Error(t, err)
	})
}

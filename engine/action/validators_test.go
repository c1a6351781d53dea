package action

import (
	"errors"
	"testing"
	"time"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ID:     "act-1",
		AppID:  "app-1",
		Name:   "lookup-user",
		Method: core.MethodGet,
		URL:    "https://api.example.com/users/{userId}",
		Parameters: []Parameter{
			{Name: "userId", Type: TypeString, Required: true},
		},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("Should accept a valid configuration", func(t *testing.T) {
		require.NoError(t, validConfig().Validate(t.Context()))
	})

	t.Run("Should reject an unsupported method", func(t *testing.T) {
		cfg := validConfig()
		cfg.Method = "TRACE"
		require.Error(t, cfg.Validate(t.Context()))
	})

	t.Run("Should reject duplicate parameter names", func(t *testing.T) {
		cfg := validConfig()
		cfg.Parameters = append(cfg.Parameters, Parameter{Name: "userId", Type: TypeNumber})
		err := cfg.Validate(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "userId")
	})

	t.Run("Should reject an invalid nested parameter type", func(t *testing.T) {
		cfg := validConfig()
		cfg.Parameters = append(cfg.Parameters, Parameter{
			Name: "filters",
			Type: TypeObject,
			Properties: []Parameter{
				{Name: "sort", Type: "enum"},
			},
		})
		err := cfg.Validate(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "filters.sort")
	})

	t.Run("Should reject URL placeholder without matching parameter", func(t *testing.T) {
		cfg := validConfig()
		cfg.URL = "https://api.example.com/users/{userId}/orders/{orderId}"
		err := cfg.Validate(t.Context())
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeValidation, coded.Code)
		assert.Equal(t, "orderId", coded.Details["parameter"])
	})

	t.Run("Should reject self dependency as a cycle", func(t *testing.T) {
		cfg := validConfig()
		cfg.Dependencies = []Dependency{{Source: cfg.ID}}
		err := cfg.Validate(t.Context())
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeCycle, coded.Code)
	})

	t.Run("Should reject body-injected api_key auth on a bodyless method", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth = &AuthConfig{
			Type:     AuthAPIKey,
			Location: LocationBody,
			Key:      "token",
			Value:    "secret123",
		}
		err := cfg.Validate(t.Context())
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeValidation, coded.Code)
		assert.Equal(t, "body", coded.Details["location"])

		cfg.Method = core.MethodPost
		require.NoError(t, cfg.Validate(t.Context()))
	})

	t.Run("Should reject incomplete auth configuration", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth = &AuthConfig{Type: AuthBearer}
		err := cfg.Validate(t.Context())
		require.Error(t, err)
		var coded *core.Error
		require.True(t, errors.As(err, &coded))
		assert.Equal(t, core.ErrCodeAuth, coded.Code)
	})
}

func TestConfigTimeout(t *testing.T) {
	t.Run("Should apply the default when unset", func(t *testing.T) {
		cfg := validConfig()
		assert.Equal(t, DefaultTimeout, cfg.Timeout())
	})

	t.Run("Should honor a configured timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.TimeoutMs = 50
		assert.Equal(t, 50*time.Millisecond, cfg.Timeout())
	})

	t.Run("Should clamp to the upper bound", func(t *testing.T) {
		cfg := validConfig()
		cfg.TimeoutMs = int((MaxTimeout + time.Minute) / time.Millisecond)
		assert.Equal(t, MaxTimeout, cfg.Timeout())
	})
}

func TestConfigMasked(t *testing.T) {
	t.Run("Should mask auth secrets on the read view", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth = &AuthConfig{
			Type:     AuthAPIKey,
			Location: LocationHeader,
			Key:      "X-API-Key",
			Value:    "secret123",
		}
		masked, err := cfg.Masked()
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", masked.Auth.Value.Value())
		assert.Equal(t, core.SecretMask, masked.Auth.Value.Value())
		// execution-time view still holds the raw secret
		assert.Equal(t, "secret123", cfg.Auth.Value.Value())
	})
}

func TestPlaceholders(t *testing.T) {
	t.Run("Should list placeholders in order", func(t *testing.T) {
		names := Placeholders("https://api.example.com/{a}/x/{b}?v={c}")
		assert.Equal(t, []string{"a", "b", "c"}, names)
	})

	t.Run("Should return nil for plain URLs", func(t *testing.T) {
		assert.Nil(t, Placeholders("https://api.example.com/users"))
	})
}

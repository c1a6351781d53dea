package action

import (
	"fmt"
	"reflect"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/go-viper/mapstructure/v2"
)

// AuthType tags the credential strategy variant.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "api_key"
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
)

func (t AuthType) IsValid() bool {
	switch t {
	case AuthNone, AuthAPIKey, AuthBearer, AuthBasic:
		return true
	default:
		return false
	}
}

// APIKeyLocation selects where an api_key credential is injected.
type APIKeyLocation string

const (
	LocationHeader APIKeyLocation = "header"
	LocationQuery  APIKeyLocation = "query"
	LocationBody   APIKeyLocation = "body"
)

func (l APIKeyLocation) IsValid() bool {
	switch l {
	case LocationHeader, LocationQuery, LocationBody:
		return true
	default:
		return false
	}
}

// AuthConfig is the closed variant over the supported credential
// strategies. Exactly the fields of the tagged variant are meaningful;
// secret material is typed core.SecretString so it can never be logged or
// serialized in the clear.
type AuthConfig struct {
	Type     AuthType          `json:"type"               mapstructure:"type"`
	Location APIKeyLocation    `json:"location,omitempty" mapstructure:"location"`
	Key      string            `json:"key,omitempty"      mapstructure:"key"`
	Value    core.SecretString `json:"value,omitempty"    mapstructure:"value"`
	Token    core.SecretString `json:"token,omitempty"    mapstructure:"token"`
	Username string            `json:"username,omitempty" mapstructure:"username"`
	Password core.SecretString `json:"password,omitempty" mapstructure:"password"`
}

// secretStringDecodeHook converts plain strings from stored rows into
// SecretString fields during decode.
func secretStringDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(core.SecretString("")) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return core.SecretString(v), nil
	case []byte:
		return core.SecretString(v), nil
	default:
		return data, nil
	}
}

// DecodeAuthConfig decodes a stored, loosely-typed auth row into the closed
// variant. Unknown keys are rejected so malformed rows surface at write
// time instead of at execution.
func DecodeAuthConfig(raw map[string]any) (*AuthConfig, error) {
	if raw == nil {
		return nil, nil
	}
	var cfg AuthConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
		DecodeHook:  secretStringDecodeHook,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build auth decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, core.NewError(err, core.ErrCodeAuth, "malformed auth configuration", nil)
	}
	if err := cfg.CheckComplete(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CheckComplete verifies the variant carries every field its strategy
// requires. Missing secret material is an auth_error.
func (a *AuthConfig) CheckComplete() error {
	switch a.Type {
	case AuthNone, "":
		return nil
	case AuthAPIKey:
		if !a.Location.IsValid() {
			return core.NewErrorf(core.ErrCodeAuth, "api_key auth requires a valid location (header, query or body)")
		}
		if a.Key == "" {
			return core.NewErrorf(core.ErrCodeAuth, "api_key auth requires a key name")
		}
		if a.Value == "" {
			return core.NewErrorf(core.ErrCodeAuth, "api_key auth requires a value")
		}
	case AuthBearer:
		if a.Token == "" {
			return core.NewErrorf(core.ErrCodeAuth, "bearer auth requires a token")
		}
	case AuthBasic:
		if a.Username == "" {
			return core.NewErrorf(core.ErrCodeAuth, "basic auth requires a username")
		}
		if a.Password == "" {
			return core.NewErrorf(core.ErrCodeAuth, "basic auth requires a password")
		}
	default:
		return core.NewErrorf(core.ErrCodeAuth, "unknown auth type %q", a.Type)
	}
	return nil
}

// Masked returns a copy with every secret field replaced by the fixed
// placeholder. Masking is idempotent: masking a masked config is a no-op.
func (a *AuthConfig) Masked() *AuthConfig {
	if a == nil {
		return nil
	}
	masked := *a
	masked.Value = masked.Value.Masked()
	masked.Token = masked.Token.Masked()
	masked.Password = masked.Password.Masked()
	return &masked
}

package runner

import (
	"encoding/base64"
	"fmt"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
)

// Injection is the set of request mutations a credential strategy produces.
// It is assembled immediately before the request is built and never stored,
// logged or returned.
type Injection struct {
	Headers    map[string]string
	Query      map[string]string
	BodyFields map[string]any
}

func emptyInjection() *Injection {
	return &Injection{
		Headers:    map[string]string{},
		Query:      map[string]string{},
		BodyFields: map[string]any{},
	}
}

// ResolveAuth converts a stored auth configuration into concrete request
// mutations. A malformed configuration is an auth_error.
func ResolveAuth(cfg *action.AuthConfig) (*Injection, error) {
	inj := emptyInjection()
	if cfg == nil || cfg.Type == action.AuthNone || cfg.Type == "" {
		return inj, nil
	}
	if err := cfg.CheckComplete(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case action.AuthAPIKey:
		switch cfg.Location {
		case action.LocationHeader:
			inj.Headers[cfg.Key] = cfg.Value.Value()
		case action.LocationQuery:
			inj.Query[cfg.Key] = cfg.Value.Value()
		case action.LocationBody:
			inj.BodyFields[cfg.Key] = cfg.Value.Value()
		}
	case action.AuthBearer:
		inj.Headers["Authorization"] = "Bearer " + cfg.Token.Value()
	case action.AuthBasic:
		credentials := fmt.Sprintf("%s:%s", cfg.Username, cfg.Password.Value())
		inj.Headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
	default:
		return nil, core.NewErrorf(core.ErrCodeAuth, "unknown auth type %q", cfg.Type)
	}
	return inj, nil
}

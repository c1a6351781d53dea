package runner

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/chipp-ai/dispatch/engine/action"
	"github.com/chipp-ai/dispatch/engine/core"
)

// HTTPRequest is the fully assembled outbound call: method, resolved URL,
// headers, query string and body, with auth already injected.
type HTTPRequest struct {
	Method  core.Method
	URL     string
	Headers map[string]string
	Query   map[string]string
	Body    map[string]any
}

// BuildRequest assembles the outbound request from validated inputs and the
// resolved auth injection. URL template placeholders consume their matching
// inputs; leftovers go to the query string for GET/DELETE and to the JSON
// body otherwise. Auth-injected fields win over colliding parameter values:
// they are operator-configured, not caller-supplied.
func BuildRequest(cfg *action.Config, inputs core.Input, auth *Injection) (*HTTPRequest, error) {
	if auth == nil {
		auth = emptyInjection()
	}
	resolvedURL, consumed, err := substituteURL(cfg, inputs)
	if err != nil {
		return nil, err
	}
	req := &HTTPRequest{
		Method:  cfg.Method,
		URL:     resolvedURL,
		Headers: make(map[string]string, len(auth.Headers)+1),
		Query:   make(map[string]string, len(auth.Query)+len(inputs)),
	}
	for k, v := range auth.Headers {
		req.Headers[k] = v
	}
	for k, v := range auth.Query {
		req.Query[k] = v
	}
	if cfg.Method.HasBody() {
		req.Headers["Content-Type"] = "application/json"
		req.Body = make(map[string]any, len(inputs)+len(auth.BodyFields))
		for name, value := range inputs {
			if consumed[name] {
				continue
			}
			req.Body[name] = value
		}
		// auth body fields override colliding parameter values
		for k, v := range auth.BodyFields {
			req.Body[k] = v
		}
		return req, nil
	}
	if len(auth.BodyFields) > 0 {
		return nil, core.NewErrorf(core.ErrCodeAuth,
			"auth body fields cannot be injected into a bodyless %s request", cfg.Method)
	}
	for name, value := range inputs {
		if consumed[name] {
			continue
		}
		if _, taken := req.Query[name]; taken {
			continue
		}
		req.Query[name] = stringifyValue(value)
	}
	return req, nil
}

// substituteURL replaces {param} placeholders from inputs. An unmatched
// placeholder is a validation_error: the request could only ever target a
// malformed URL.
func substituteURL(cfg *action.Config, inputs core.Input) (string, map[string]bool, error) {
	consumed := make(map[string]bool)
	resolved := cfg.URL
	for _, name := range action.Placeholders(cfg.URL) {
		value, present := inputs[name]
		if !present {
			return "", nil, core.NewError(nil, core.ErrCodeValidation,
				fmt.Sprintf("unresolved URL placeholder {%s} for action %s", name, cfg.ID),
				map[string]any{"parameter": name, "action_id": cfg.ID.String()})
		}
		resolved = strings.ReplaceAll(resolved, "{"+name+"}", url.PathEscape(stringifyValue(value)))
		consumed[name] = true
	}
	return resolved, consumed, nil
}

// stringifyValue renders a parameter value for URL or query use. Floats
// keep their plain decimal form; composite values fall back to JSON.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(encoded)
	}
}

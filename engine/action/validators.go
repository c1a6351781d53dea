package action

import (
	"context"
	"fmt"
	"regexp"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/chipp-ai/dispatch/engine/schema"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Placeholders returns the parameter names referenced by {param} markers in
// a URL template, in order of appearance.
func Placeholders(urlTemplate string) []string {
	matches := placeholderRe.FindAllStringSubmatch(urlTemplate, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// NewConfigValidator builds the composite write-time validator for an
// action configuration.
func NewConfigValidator(cfg *Config) schema.Validator {
	return schema.NewCompositeValidator(
		schema.NewStructValidator(cfg),
		&methodValidator{cfg: cfg},
		&paramsValidator{cfg: cfg},
		&authValidator{cfg: cfg},
		&templateValidator{cfg: cfg},
		&selfDependencyValidator{cfg: cfg},
	)
}

type methodValidator struct {
	cfg *Config
}

func (v *methodValidator) Validate(_ context.Context) error {
	if !v.cfg.Method.IsValid() {
		return core.NewErrorf(core.ErrCodeValidation, "unsupported HTTP method %q", v.cfg.Method)
	}
	return nil
}

type paramsValidator struct {
	cfg *Config
}

func (v *paramsValidator) Validate(_ context.Context) error {
	seen := make(map[string]struct{}, len(v.cfg.Parameters))
	for i := range v.cfg.Parameters {
		p := &v.cfg.Parameters[i]
		if _, dup := seen[p.Name]; dup {
			return core.NewErrorf(core.ErrCodeValidation, "duplicate parameter %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if err := checkParamTree(p, p.Name); err != nil {
			return err
		}
	}
	return nil
}

func checkParamTree(p *Parameter, path string) error {
	if !p.Type.IsValid() {
		return core.NewErrorf(core.ErrCodeValidation, "parameter %q has unsupported type %q", path, p.Type)
	}
	for i := range p.Properties {
		child := &p.Properties[i]
		if err := checkParamTree(child, fmt.Sprintf("%s.%s", path, child.Name)); err != nil {
			return err
		}
	}
	if p.Items != nil {
		if err := checkParamTree(p.Items, path+"[]"); err != nil {
			return err
		}
	}
	return nil
}

type authValidator struct {
	cfg *Config
}

func (v *authValidator) Validate(_ context.Context) error {
	if v.cfg.Auth == nil {
		return nil
	}
	if err := v.cfg.Auth.CheckComplete(); err != nil {
		return err
	}
	// a body-injected credential has nowhere to go on a bodyless method
	if v.cfg.Auth.Type == AuthAPIKey && v.cfg.Auth.Location == LocationBody && !v.cfg.Method.HasBody() {
		return core.NewError(nil, core.ErrCodeValidation,
			fmt.Sprintf("api_key auth at location body cannot be sent with method %s, which has no request body", v.cfg.Method),
			map[string]any{"location": string(LocationBody), "method": v.cfg.Method.String()})
	}
	return nil
}

// templateValidator rejects URL placeholders with no declared parameter:
// they could never resolve at execution time.
type templateValidator struct {
	cfg *Config
}

func (v *templateValidator) Validate(_ context.Context) error {
	for _, name := range Placeholders(v.cfg.URL) {
		if v.cfg.FindParameter(name) == nil {
			return core.NewError(nil, core.ErrCodeValidation,
				fmt.Sprintf("URL placeholder {%s} has no matching parameter", name),
				map[string]any{"parameter": name})
		}
	}
	return nil
}

// selfDependencyValidator rejects the degenerate one-node cycle. Cross-action
// cycle detection needs the full graph and runs in the dependency use case.
type selfDependencyValidator struct {
	cfg *Config
}

func (v *selfDependencyValidator) Validate(_ context.Context) error {
	for i := range v.cfg.Dependencies {
		if v.cfg.Dependencies[i].Source == v.cfg.ID {
			return core.NewError(nil, core.ErrCodeCycle,
				fmt.Sprintf("action %s cannot depend on itself", v.cfg.ID),
				map[string]any{"actions": []string{v.cfg.ID.String()}})
		}
	}
	return nil
}

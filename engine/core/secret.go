package core

import "encoding/json"

// SecretMask is the fixed placeholder emitted wherever a secret would
// otherwise appear. Fixed length so nothing about the original value, not
// even its size, leaks through display paths.
const SecretMask = "[REDACTED]"

// SecretString holds secret material (API keys, tokens, passwords). Its
// String and JSON representations are always masked; the raw value is only
// reachable through Value, which execution-time code calls immediately
// before building the outbound request.
type SecretString string

func (s SecretString) String() string {
	if s == "" {
		return ""
	}
	return SecretMask
}

// Value returns the raw secret.
func (s SecretString) Value() string {
	return string(s)
}

// IsMasked reports whether the stored value is already the placeholder,
// which makes masking idempotent.
func (s SecretString) IsMasked() bool {
	return string(s) == SecretMask
}

// Masked returns the placeholder form of the secret, preserving emptiness.
func (s SecretString) Masked() SecretString {
	if s == "" {
		return s
	}
	return SecretString(SecretMask)
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SecretString) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SecretString(raw)
	return nil
}

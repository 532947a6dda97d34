// Package secret masks sensitive configuration values, e.g. the database password,
// so they are not exposed by accident in logs, status output or JSON.
package secret

import (
	"encoding/json"
	"errors"
	"log/slog"
)

const mask = "******"

var ErrScan = errors.New("could not scan secret")

func New(secret string) Secret {
	return Secret{value: &secret}
}

// Secret is a string that prints, logs and marshals as a mask.
// Use Secret() to access the actual value.
type Secret struct {
	// value is a pointer, so reflection and %#v do not reveal the data.
	value *string
}

// Secret returns the actual value.
func (s Secret) Secret() string {
	if s.value == nil {
		return ""
	}

	return *s.value
}

// IsEmpty reports whether no value is set.
func (s Secret) IsEmpty() bool {
	return s.Secret() == ""
}

func (s Secret) String() string {
	return mask
}

func (s Secret) GoString() string {
	return mask
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(mask)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(mask) //nolint:wrapcheck // export the underlying error
}

func (s *Secret) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint:wrapcheck // export the underlying error
	}

	s.value = &raw

	return nil
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(mask), nil
}

// UnmarshalText is used by the config decode hook.
func (s *Secret) UnmarshalText(data []byte) error {
	text := string(data)
	s.value = &text

	return nil
}

func (s *Secret) Scan(value any) error {
	if value == nil {
		empty := ""
		s.value = &empty

		return nil
	}

	switch v := value.(type) {
	case string:
		s.value = &v
	case []byte:
		str := string(v)
		s.value = &str
	default:
		return ErrScan
	}

	return nil
}

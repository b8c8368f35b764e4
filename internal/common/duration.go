package common

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
)

// Duration is a wrapper type that parses time durations from text
// (e.g. "30s", "1m30s") in every supported configuration format.
type Duration struct {
	time.Duration
}

// NewDuration returns a Duration wrapper.
func NewDuration(d time.Duration) Duration {
	return Duration{Duration: d}
}

// UnmarshalText unmarshals a duration expressed as a Go duration string.
func (d *Duration) UnmarshalText(data []byte) error {
	duration, err := time.ParseDuration(string(data))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(data), err)
	}

	d.Duration = duration

	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// JSONSchema returns a custom schema to be used for the JSON Schema generation of this type
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Title:       "Duration",
		Description: "Go duration string using the units ns, us, ms, s, m and h",
		Examples: []any{
			"1m",
			"300ms",
		},
	}
}

package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type timeouts struct {
	Sweep Duration `json:"sweep" yaml:"sweep" toml:"sweep"`
	Idle  Duration `json:"idle" yaml:"idle" toml:"idle"`
}

func TestDuration_UnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "250ms", want: 250 * time.Millisecond},
		{input: "20s", want: 20 * time.Second},
		{input: "1h30m45s", want: time.Hour + 30*time.Minute + 45*time.Second},
		{input: "0s", want: 0},
		{input: "-5s", want: -5 * time.Second},
		{input: "40", wantErr: true},
		{input: "1d", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.ErrorContains(t, err, "invalid duration")
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_ConfigFormats(t *testing.T) {
	t.Parallel()

	want := timeouts{
		Sweep: NewDuration(20 * time.Second),
		Idle:  NewDuration(40 * time.Second),
	}

	tests := []struct {
		name   string
		decode func(*timeouts) error
	}{
		{
			name: "json",
			decode: func(out *timeouts) error {
				return json.Unmarshal([]byte(`{"sweep":"20s","idle":"40s"}`), out)
			},
		},
		{
			name: "yaml",
			decode: func(out *timeouts) error {
				return yaml.Unmarshal([]byte("sweep: 20s\nidle: 40s\n"), out)
			},
		},
		{
			name: "toml",
			decode: func(out *timeouts) error {
				return toml.Unmarshal([]byte("sweep = \"20s\"\nidle = \"40s\"\n"), out)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got timeouts
			require.NoError(t, tt.decode(&got))
			require.Equal(t, want, got)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(timeouts{Sweep: NewDuration(90 * time.Second)})
	require.NoError(t, err)
	require.JSONEq(t, `{"sweep":"1m30s","idle":"0s"}`, string(data))

	var decoded timeouts
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, 90*time.Second, decoded.Sweep.Duration)
}

func TestDuration_JSONSchema(t *testing.T) {
	t.Parallel()

	schema := Duration{}.JSONSchema()

	require.Equal(t, "string", schema.Type)
	require.Equal(t, "Duration", schema.Title)
	require.Contains(t, schema.Examples, "300ms")
}

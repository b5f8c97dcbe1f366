package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrap(t *testing.T, inner string) []byte {
	t.Helper()
	b, err := json.Marshal(inner)
	require.NoError(t, err)
	return b
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{
			name: "wrapped document with NaN",
			in:   wrap(t, `{"Q1": {"1": 90.5, "2": NaN}}`),
			want: `{"Q1": {"1": 90.5, "2": null}}`,
		},
		{
			name: "NaN inside strings is kept",
			in:   wrap(t, `{"name": "NaN \"NaN\"", "v": NaN}`),
			want: `{"name": "NaN \"NaN\"", "v": null}`,
		},
		{
			name: "infinities",
			in:   []byte(`[Infinity, -Infinity, -1.5]`),
			want: `[null, null, -1.5]`,
		},
		{
			name: "plain json passes through",
			in:   []byte(` {"a": 1} `),
			want: `{"a": 1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.True(t, json.Valid(got))
		})
	}
}

func TestSanitizeErrorPayload(t *testing.T) {
	_, err := Sanitize(wrap(t, `["Error", "Data not found"]`))
	assert.True(t, errors.Is(err, ErrDataNotFound))

	_, err = Sanitize([]byte(`"not json at all`))
	assert.Error(t, err)
}

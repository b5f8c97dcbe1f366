package telemetry

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

var (
	ErrDataNotFound = errors.New("data not found")

	tokenNaN        = []byte("NaN")
	tokenInfinity   = []byte("Infinity")
	tokenNegInfinty = []byte("-Infinity")
	tokenNull       = []byte("null")
)

// Sanitize turns a backend payload into plain JSON. The backend answers with a
// JSON string that itself contains JSON, and that inner document may carry the
// non-standard tokens NaN and Infinity which are replaced with null.
func Sanitize(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, errors.Wrap(err, "unwrapping telemetry payload")
		}
		trimmed = bytes.TrimSpace([]byte(inner))
	}
	out := replaceNonFinite(trimmed)
	if isErrorPayload(out) {
		return nil, ErrDataNotFound
	}
	return out, nil
}

func replaceNonFinite(b []byte) []byte {
	out := make([]byte, 0, len(b))
	inString, escaped := false, false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
			out = append(out, c)
		case c == 'N' && bytes.HasPrefix(b[i:], tokenNaN):
			out = append(out, tokenNull...)
			i += len(tokenNaN) - 1
		case c == 'I' && bytes.HasPrefix(b[i:], tokenInfinity):
			out = append(out, tokenNull...)
			i += len(tokenInfinity) - 1
		case c == '-' && bytes.HasPrefix(b[i:], tokenNegInfinty):
			out = append(out, tokenNull...)
			i += len(tokenNegInfinty) - 1
		default:
			out = append(out, c)
		}
	}
	return out
}

// isErrorPayload detects the ["Error", "..."] answer of the backend.
func isErrorPayload(b []byte) bool {
	if len(b) == 0 || b[0] != '[' {
		return false
	}
	var arr []any
	if err := json.Unmarshal(b, &arr); err != nil || len(arr) == 0 {
		return false
	}
	s, ok := arr[0].(string)
	return ok && s == "Error"
}

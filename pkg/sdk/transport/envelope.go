package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the paginated list shape: {"count": n, "next": ..., "results": [...]}.
type envelope struct {
	Results json.RawMessage `json:"results"`
}

// DecodeList accepts either a bare JSON array or a paginated envelope with a
// "results" field and returns the items. The result is never nil.
func DecodeList[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)

	var items []T
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
	case trimmed[0] == '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to decode list envelope: %w", err)
		}
		if len(env.Results) == 0 {
			return nil, fmt.Errorf("failed to decode list: object has no results field")
		}
		if err := json.Unmarshal(env.Results, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list results: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to decode list: unexpected response %q", truncate(trimmed, 32))
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

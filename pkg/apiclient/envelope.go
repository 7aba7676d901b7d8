package apiclient

import (
	"bytes"
	"encoding/json"
)

// Envelope is the `{success, message, data}` wrapper the API puts around
// every successful protected response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// UnwrapEnvelope rewrites an enveloped response body to its bare `data`
// value. Unwrapping is best-effort: a body that is not a JSON object, or one
// without a `data` key, is returned unchanged. Presence of the key wins even
// when its value is null, matching the server's envelope contract.
func UnwrapEnvelope(body []byte) []byte {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return body
	}

	data, ok := obj["data"]
	if !ok {
		return body
	}
	if data == nil {
		return []byte("null")
	}
	return data
}

package cpapi

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Payload is the body of an API call. It is sent as a JSON object; a nil or
// empty payload is sent as {}.
type Payload map[string]any

// Response is the successful result of an API call. The body is kept as raw
// JSON and is opaque to the client; use Get for path lookups or Decode/Map to
// unmarshal it.
type Response struct {
	raw []byte
}

// Get returns the value at a gjson path, e.g. "sid" or "tasks.0.status".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Raw returns the JSON body as received.
func (r *Response) Raw() []byte {
	return r.raw
}

// String returns the JSON body as a string.
func (r *Response) String() string {
	return string(r.raw)
}

// Message returns the top-level "message" field, which many write commands use
// to report their outcome.
func (r *Response) Message() string {
	return r.Get("message").String()
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.raw, v); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}

	return nil
}

// Map unmarshals the body into a generic map.
func (r *Response) Map() (map[string]any, error) {
	var out map[string]any
	if err := r.Decode(&out); err != nil {
		return nil, err
	}

	return out, nil
}

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexID is an id that the sources publish either as a JSON number or as a
// JSON string. It is kept in its string form; null decodes to "".
type FlexID string

// String returns the id text.
func (f FlexID) String() string { return string(f) }

// UnmarshalJSON accepts 4151, "4151" and null.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id %s: %w", data, err)
		}
		*f = FlexID(n.String())
	}
	return nil
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (f FlexID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(f), 10, 64); err == nil {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

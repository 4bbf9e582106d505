package music

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tokens is a list of degree tokens that also accepts bare JSON numbers
// ([1, "b3", 5] decodes to ["1", "b3", "5"]). Nulls are dropped.
type Tokens []string

func (t *Tokens) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tokens must be a list: %w", err)
	}

	out := make(Tokens, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		switch {
		case bytes.Equal(item, []byte("null")):
			continue
		case len(item) > 0 && item[0] == '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			out = append(out, s)
		default:
			var n json.Number
			if err := json.Unmarshal(item, &n); err != nil {
				return fmt.Errorf("token %s is neither a string nor a number", item)
			}
			out = append(out, n.String())
		}
	}
	*t = out
	return nil
}

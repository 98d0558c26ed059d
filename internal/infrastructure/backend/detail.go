package backend

import (
	"encoding/json"
	"strings"
)

const validationFallback = "request failed due to validation errors"

type errorEnvelope struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// parseDetail extracts the human-readable message from an error body. The
// detail is either a string or a list of {msg} objects; list entries are
// joined with "; ". An empty result means the body had nothing usable.
func parseDetail(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}

	if len(env.Detail) > 0 {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil {
			return strings.TrimSpace(s)
		}

		var items []validationItem
		if err := json.Unmarshal(env.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if m := strings.TrimSpace(it.Msg); m != "" {
					msgs = append(msgs, m)
				}
			}
			if len(msgs) == 0 {
				return validationFallback
			}
			return strings.Join(msgs, "; ")
		}

		var item validationItem
		if err := json.Unmarshal(env.Detail, &item); err == nil && item.Msg != "" {
			return item.Msg
		}
	}

	return strings.TrimSpace(env.Message)
}

package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ScanJSONArray finds the first well-formed bracketed JSON array inside model
// output. Models wrap their answers in prose and code fences; rather than
// trusting fences we try every '[' until one decodes as a complete value.
func ScanJSONArray(text string) ([]byte, error) {
	s := stripCodeFences(text)
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		if len(raw) > 0 && raw[0] == '[' {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("no JSON array found in response")
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if rest, ok := strings.CutPrefix(strings.TrimLeft(s, " "), "json"); ok {
		s = rest
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

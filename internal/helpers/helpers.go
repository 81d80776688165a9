package helpers

import (
	"encoding/json"
	"strings"
)

func StringTrim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseList accepts either a JSON array of strings or a comma separated list.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return compact(items)
		}
	}
	return compact(strings.Split(raw, ","))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := StringTrim(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

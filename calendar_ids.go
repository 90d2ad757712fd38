package cronus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultCalendarID is used when the configuration yields no calendar at all.
const DefaultCalendarID = "primary"

// WarnFn receives non fatal configuration warnings.
var WarnFn = func(s string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, s+"\n", args...)
}

// ParseCalendarIDs normalizes a raw configuration value into a list of
// calendar identifiers. It accepts the empty string, a comma separated list,
// or a JSON array; a value that merely looks like a JSON array degrades to
// comma splitting. It never fails, malformed input yields a partial or empty
// result.
func ParseCalendarIDs(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var parsed []interface{}
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			ids := make([]string, 0, len(parsed))
			for _, id := range parsed {
				ids = append(ids, fmt.Sprintf("%v", id))
			}
			return TrimCalendarIDs(ids)
		}
		WarnFn("unable to parse calendar ids as JSON, falling back to comma separation")
	}

	return TrimCalendarIDs(strings.Split(trimmed, ","))
}

// TrimCalendarIDs trims every entry and drops the empty ones, keeping order.
func TrimCalendarIDs(ids []string) []string {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	return cleaned
}

// UniqueCalendarIDs removes duplicates keeping first seen order, and
// substitutes the default calendar when nothing remains.
func UniqueCalendarIDs(ids []string) []string {
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		exists := false
		for _, u := range unique {
			if u == id {
				exists = true
				break
			}
		}
		if !exists {
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		unique = append(unique, DefaultCalendarID)
	}
	return unique
}

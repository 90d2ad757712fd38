package cronus

import "strings"

// DefaultKeywords flag events that warrant a follow-up reminder. The list is
// configuration, callers override it from flags or the environment.
var DefaultKeywords = []string{"кино", "театр", "дима с катей на"}

// ContainsAny reports whether any of the event's free text fields contains
// any of the keywords, case insensitively. An event with no usable fields
// never matches.
func ContainsAny(ev Event, keywords []string) bool {
	fields := make([]string, 0, 3)
	for _, f := range []string{ev.Summary, ev.Description, ev.Location} {
		if f != "" {
			fields = append(fields, strings.ToLower(f))
		}
	}
	for _, field := range fields {
		for _, kw := range keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(field, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

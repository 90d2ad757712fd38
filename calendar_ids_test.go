package cronus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCalendarIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "empty",
			raw:  "",
			want: []string{},
		},
		{
			name: "blank",
			raw:  "   ",
			want: []string{},
		},
		{
			name: "single",
			raw:  "work@example.com",
			want: []string{"work@example.com"},
		},
		{
			name: "comma_list_with_spaces",
			raw:  "one,two , three",
			want: []string{"one", "two", "three"},
		},
		{
			name: "json_array",
			raw:  `["one","two"]`,
			want: []string{"one", "two"},
		},
		{
			name: "json_array_with_spaces",
			raw:  `[ "one" , "two" ]`,
			want: []string{"one", "two"},
		},
		{
			name: "malformed_json_falls_back_to_comma",
			raw:  `["one","two"`,
			want: []string{`["one"`, `"two"`},
		},
		{
			name: "trailing_comma",
			raw:  "one,two,",
			want: []string{"one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCalendarIDs(tt.raw))
		})
	}
}

func TestUniqueCalendarIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{
			name: "nil_defaults_to_primary",
			ids:  nil,
			want: []string{DefaultCalendarID},
		},
		{
			name: "duplicates_keep_first",
			ids:  []string{"one", "two", "one"},
			want: []string{"one", "two"},
		},
		{
			name: "empty_defaults_to_primary",
			ids:  []string{},
			want: []string{DefaultCalendarID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueCalendarIDs(tt.ids))
		})
	}
}

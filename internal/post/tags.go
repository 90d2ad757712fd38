package post

import (
	"strings"

	"git.sr.ht/~mariusor/tagextractor"
)

type tags []string

func (t tags) Render(tagPref string) string {
	rendered := make([]string, 0, len(t))
	for _, g := range t {
		if g = tagextractor.TagNormalize(g); g != "" {
			rendered = append(rendered, tagPref+g)
		}
	}
	return strings.Join(uniqueValues(rendered, stringsContain), " ")
}

package post

import (
	"fmt"
	"strings"
	"time"

	"github.com/McKael/madon"
)

const maxPostSize = 500
const unlisted = "unlisted"

// ToMastodon posts the digest as a thread of unlisted statuses, cleaving the
// message so that each status fits the instance limit. The configured
// keywords are appended to the last status as hashtags.
func ToMastodon(client *madon.Client, keywords []string) PosterFn {
	if client == nil {
		return ToStdout
	}
	return func(message string) error {
		if message == "" {
			return nil
		}

		hashtags := tags(keywords).Render("#")
		chunks := cleaveMessage(message, maxPostSize)

		var inReplyTo int64 = 0
		for i, content := range chunks {
			if i == len(chunks)-1 && hashtags != "" {
				content = content + "\n\n" + hashtags
			}
			if inReplyTo > 0 {
				time.Sleep(500 * time.Millisecond)
			}
			s, err := client.PostStatus(content, inReplyTo, nil, false, "", unlisted)
			if err != nil {
				return fmt.Errorf("%s: %w", client.InstanceURL, err)
			}
			inReplyTo = s.ID
			infFn("Post at: %s", s.URI)
		}
		return nil
	}
}

// cleaveMessage splits the message on line boundaries into chunks no longer
// than size, keeping line order.
func cleaveMessage(message string, size int) []string {
	lines := strings.Split(message, "\n")

	fits := func(chunk []string) bool {
		return len(strings.Join(chunk, "\n")) <= size
	}

	chunks := make([]string, 0)
	for len(lines) > 0 {
		head, rest := cleaveSlice(lines, fits)
		chunks = append(chunks, strings.Join(head, "\n"))
		lines = rest
	}
	return chunks
}

func stringsContain(sl []string, v string) bool {
	for _, vs := range sl {
		if vs == v {
			return true
		}
	}
	return false
}

func uniqueValues[T comparable](sl []T, containsFn func(sl []T, u T) bool) []T {
	newSl := make([]T, 0, len(sl))
	for _, v := range sl {
		if !containsFn(newSl, v) {
			newSl = append(newSl, v)
		}
	}
	return newSl
}

func splitSlice[T any](sl []T, size int) [][]T {
	result := make([][]T, 0)
	if len(sl) <= size {
		result = append(result, sl)
		return result
	}
	if size == 0 {
		size = 1
	}
	cur := 0
	end := size
	for {
		if cur+size < len(sl) {
			end = cur + size
		} else {
			end = len(sl)
		}
		chunk := sl[cur:end]
		cur += size
		result = append(result, chunk)
		if cur >= len(sl) {
			break
		}
	}
	return result
}

func cleaveSlice[T any](incoming []T, checkFn func([]T) bool) ([]T, []T) {
	if checkFn(incoming) {
		return incoming, nil
	}

	var remainder []T
	for {
		cleaveLen := len(incoming) / 2
		halves := splitSlice[T](incoming, cleaveLen)
		if len(halves) >= 2 {
			// the freshly cleaved tail precedes anything stashed on a
			// previous narrowing pass
			tail := make([]T, 0)
			for _, h := range halves[1:] {
				tail = append(tail, h...)
			}
			remainder = append(tail, remainder...)
		}
		if checkFn(halves[0]) {
			return halves[0], remainder
		}
		if len(halves[0]) == len(incoming) {
			// a single element that can not fit; hand it back as its own
			// chunk, the stashed remainder still follows it
			break
		}
		incoming = halves[0]
	}
	return incoming, remainder
}

package post

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaveMessageShort(t *testing.T) {
	message := "a short message"
	chunks := cleaveMessage(message, maxPostSize)
	require.Len(t, chunks, 1)
	assert.Equal(t, message, chunks[0])
}

func TestCleaveMessageSplitsOnLines(t *testing.T) {
	lines := []string{
		"first line", "second line", "third line",
		"fourth line", "fifth line", "sixth line",
	}
	message := strings.Join(lines, "\n")

	chunks := cleaveMessage(message, 25)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 25)
	}

	// joining the chunks back restores the message, line order intact
	assert.Equal(t, message, strings.Join(chunks, "\n"))
}

func TestCleaveMessageOversizedLine(t *testing.T) {
	lines := []string{
		strings.Repeat("x", 600),
		"second line",
		"third line",
	}
	message := strings.Join(lines, "\n")

	chunks := cleaveMessage(message, 500)
	require.Greater(t, len(chunks), 1)

	// the oversized line becomes its own chunk, the lines after it survive
	joined := strings.Join(chunks, "\n")
	assert.Contains(t, joined, "second line")
	assert.Contains(t, joined, "third line")
	assert.Equal(t, message, joined)
}

func TestCleaveSliceKeepsOrderAcrossPasses(t *testing.T) {
	fits := func(chunk []int) bool { return len(chunk) <= 1 }

	head, rest := cleaveSlice([]int{1, 2, 3, 4, 5, 6}, fits)
	assert.Equal(t, []int{1}, head)
	assert.Equal(t, []int{2, 3, 4, 5, 6}, rest)
}

func TestTagsRender(t *testing.T) {
	assert.Equal(t, "", tags(nil).Render("#"))
	// duplicates collapse to one hashtag
	assert.Equal(t, "#movies", tags{"movies", "movies"}.Render("#"))
}

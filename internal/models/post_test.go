package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostStatusPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Post{Status: PostStatusPublished}).IsPublished())
	assert.True(t, (&Post{Status: PostStatusDraft}).IsDraft())
	assert.False(t, (&Post{Status: PostStatusArchived}).IsPublished())
	assert.False(t, (&Post{Status: PostStatusArchived}).IsDraft())
}

func TestValidPostStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []PostStatus{PostStatusDraft, PostStatusPublished, PostStatusArchived} {
		assert.True(t, ValidPostStatus(status))
	}
	assert.False(t, ValidPostStatus("pending"))
	assert.False(t, ValidPostStatus(""))
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, (&Post{Content: ""}).WordCount())
	assert.Equal(t, 0, (&Post{Content: "   \n\t"}).WordCount())
	assert.Equal(t, 4, (&Post{Content: "four words are here"}).WordCount())
	assert.Equal(t, 3, (&Post{Content: "  spaced \n out\twords  "}).WordCount())
}

func TestReadingTime(t *testing.T) {
	t.Parallel()

	// Short content still reads as one minute.
	assert.Equal(t, 1, (&Post{Content: "hi"}).ReadingTime())
	assert.Equal(t, 1, (&Post{Content: ""}).ReadingTime())

	assert.Equal(t, 1, (&Post{Content: strings.Repeat("word ", 250)}).ReadingTime())
	assert.Equal(t, 2, (&Post{Content: strings.Repeat("word ", 500)}).ReadingTime())
	assert.Equal(t, 1, (&Post{Content: strings.Repeat("word ", 499)}).ReadingTime())
}

func TestTagList(t *testing.T) {
	t.Parallel()

	assert.Nil(t, (&Post{Tags: ""}).TagList())
	assert.Nil(t, (&Post{Tags: "  "}).TagList())
	assert.Equal(t, []string{"go", "webdev"}, (&Post{Tags: "go,webdev"}).TagList())
	assert.Equal(t, []string{"go", "webdev"}, (&Post{Tags: " go , webdev , "}).TagList())
}

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short text", snippet("short  text", 160))
	assert.Equal(t, "a b c", snippet("a\nb\t c", 160))

	long := strings.Repeat("word ", 100)
	out := snippet(long, 40)
	assert.Len(t, out, 43)
	assert.True(t, strings.HasSuffix(out, "..."))
}

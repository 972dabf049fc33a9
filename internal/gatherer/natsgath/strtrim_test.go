package natsgath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimStrToRect(t *testing.T) {
	assert.Equal(t, "", trimStrToRect("", 3, 10))

	assert.Equal(t, "short", trimStrToRect("short", 3, 10))

	wide := trimStrToRect("0123456789abcdef", 3, 10)
	assert.Equal(t, "0123456789[...]", wide)

	tall := trimStrToRect("a\nb\nc\nd\ne", 3, 10)
	assert.Equal(t, "a\nb\nc\n[...]", tall)

	both := trimStrToRect(strings.Repeat("0123456789abcdef\n", 5), 2, 10)
	assert.Equal(t, "0123456789[...]\n0123456789[...]\n[...]", both)
}

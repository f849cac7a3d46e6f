package tokencount

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountRoundsUp(t *testing.T) {
	assert.Equal(t, 0, Count(""))
	assert.Equal(t, 1, Count("a"))
	assert.Equal(t, 1, Count("abcd"))
	assert.Equal(t, 2, Count("abcde"))
	assert.Equal(t, 25, Count("0123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789"[:100]))
}

func TestCountAllSumsParts(t *testing.T) {
	assert.Equal(t, Count("abcd")+Count("abcde"), CountAll("abcd", "abcde"))
	assert.Equal(t, 0, CountAll())
}

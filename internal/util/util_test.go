package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueOr(t *testing.T) {
	assert.Equal(t, "x", ValueOr(Pointer("x"), "def"))
	assert.Equal(t, "def", ValueOr(nil, "def"))
	assert.Equal(t, 0, ValueOr(Pointer(0), 7))
}

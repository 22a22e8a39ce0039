package optional

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	var zero Value[int]
	assert.False(t, zero.IsSet())
	assert.Equal(t, None[int](), zero)
	assert.Equal(t, 7, zero.OrElse(7))
	assert.Nil(t, zero.Ptr())

	v := Of(0)
	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, got)
	assert.Equal(t, 0, v.OrElse(7))

	p := v.Ptr()
	if assert.NotNil(t, p) {
		*p = 5
		got, _ = v.Get()
		assert.Equal(t, 0, got, "Ptr must return a copy")
	}
}

func TestMap(t *testing.T) {
	assert.Equal(t, Of("42"), Map(Of(42), strconv.Itoa))
	assert.False(t, Map(None[int](), strconv.Itoa).IsSet())
}

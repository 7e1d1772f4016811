package common

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProduct(t *testing.T) {
	assert.NoError(t, ValidateProduct("كولا"))

	for _, in := range []string{"", "   ", "\t"} {
		err := ValidateProduct(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, ErrValidation))
	}
}

func TestValidatePrice(t *testing.T) {
	min, max := 0.01, 1000000.0

	assert.NoError(t, ValidatePrice(23, min, max))
	assert.NoError(t, ValidatePrice(0.01, min, max))
	assert.NoError(t, ValidatePrice(1000000, min, max))

	for _, price := range []float64{0, -5, 1000001, math.NaN(), math.Inf(1)} {
		err := ValidatePrice(price, min, max)
		require.Error(t, err, "price %v", price)
		assert.True(t, errors.Is(err, ErrValidation))
	}
}

func TestTransient(t *testing.T) {
	base := errors.New("io failure")

	assert.False(t, IsTransient(base))
	assert.True(t, IsTransient(Transient(base)))
	assert.False(t, IsTransient(nil))
	assert.Nil(t, Transient(nil))

	// The marker survives wrapping and keeps the chain intact.
	wrapped := WrapError(Transient(base), "append row")
	assert.True(t, IsTransient(wrapped))
	assert.True(t, errors.Is(wrapped, base))
}

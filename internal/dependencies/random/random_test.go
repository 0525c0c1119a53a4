package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCryptoRandom_IntnRange(t *testing.T) {
	r := New()
	for i := 0; i < 500; i++ {
		v := r.Intn(1000)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 1000)
	}
}

func TestCryptoRandom_NonPositive(t *testing.T) {
	r := New()
	assert.Equal(t, 0, r.Intn(0))
	assert.Equal(t, 0, r.Intn(-3))
}

// AngelaMos | 2026
// paypal_test.go

package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "0.00", formatMinor(0))
	assert.Equal(t, "0.05", formatMinor(5))
	assert.Equal(t, "0.99", formatMinor(99))
	assert.Equal(t, "1.00", formatMinor(100))
	assert.Equal(t, "9.90", formatMinor(990))
	assert.Equal(t, "12.34", formatMinor(1234))
	assert.Equal(t, "1000.00", formatMinor(100000))
}

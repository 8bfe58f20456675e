package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00.00", FormatClock(0))
	assert.Equal(t, "1:05.50", FormatClock(65.5))
	assert.Equal(t, "61:00.03", FormatClock(3660.033))
	assert.Equal(t, "0:00.00", FormatClock(-1))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1:02:03", 3723},
		{"02:03", 123},
		{"12.5", 12.5},
		{" 1:05.50 ", 65.5},
		{"61:00.03", 3660.03},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}

	for _, bad := range []string{"", "a:b", "1:75", "1:60:00", "-3", "1::2", "1:2:3:4", "NaN"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseClockReadsFormatClock(t *testing.T) {
	for _, v := range []float64{0, 4.2, 65.5, 3599.99} {
		got, err := ParseClock(FormatClock(v))
		require.NoError(t, err)
		assert.InDelta(t, v, got, 0.005)
	}
}

func TestFormatShort(t *testing.T) {
	assert.Equal(t, "0:00", FormatShort(0))
	assert.Equal(t, "0:05", FormatShort(4.6))
	assert.Equal(t, "12:30", FormatShort(750))
}

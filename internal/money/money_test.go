package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"250", "250.00"},
		{"12.5", "12.50"},
		{"0.01", "0.01"},
		{"19.999", "20.00"},
		{"-3.4", "-3.40"},
	}
	for _, tc := range cases {
		d, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, String(d), tc.in)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12,50", "$5"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestParsePositive(t *testing.T) {
	d, err := ParsePositive("42.10")
	require.NoError(t, err)
	assert.Equal(t, "42.10", String(d))

	for _, in := range []string{"0", "0.00", "-1"} {
		_, err := ParsePositive(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestFromFloat(t *testing.T) {
	assert.Equal(t, "10.10", String(FromFloat(10.1)))
	assert.Equal(t, "0.30", String(FromFloat(0.1+0.2)))
	assert.Equal(t, "-25.99", String(FromFloat(-25.99)))
}

func TestStringIsTwoPlaces(t *testing.T) {
	assert.Equal(t, "7.00", String(decimal.NewFromInt(7)))
}

package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savings-accounts/internal/errors"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12.34", 1234},
		{"0.01", 1},
		{"100", 10000},
		{"-8.00", -800},
		{"0", 0},
	}

	for _, tc := range cases {
		got, err := parseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseAmountRejectsSubCentPrecision(t *testing.T) {
	_, err := parseAmount("1.005")
	require.Error(t, err)
	assert.Equal(t, errors.InvalidAmount, errors.Code(err))
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12,34"} {
		_, err := parseAmount(in)
		require.Error(t, err, in)
		assert.Equal(t, errors.InvalidAmount, errors.Code(err))
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.34", formatAmount(1234))
	assert.Equal(t, "0.01", formatAmount(1))
	assert.Equal(t, "-8.00", formatAmount(-800))
	assert.Equal(t, "0.00", formatAmount(0))
}

func TestAmountRoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 99, 100, 123456789, -5000} {
		parsed, err := parseAmount(formatAmount(minor))
		require.NoError(t, err)
		assert.Equal(t, minor, parsed)
	}
}

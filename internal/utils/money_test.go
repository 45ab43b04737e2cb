package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumMoney_ExactDecimal(t *testing.T) {
	total, err := SumMoney(
		decimal.RequireFromString("10.01"),
		decimal.RequireFromString("10.02"),
		decimal.RequireFromString("10.03"),
	)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("30.06")), "got %s", total)
	assert.Equal(t, "30.06", total.StringFixed(2))
}

func TestToCents_RoundTrip(t *testing.T) {
	for _, c := range []int64{0, 1, 9, 10, 99, 100, 101, 3006, 123456789, 9007199254740993} {
		back, err := ToCents(ToDollars(c))
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
}

func TestToCents_RejectsSubCent(t *testing.T) {
	_, err := ToCents(decimal.RequireFromString("1.005"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "more than 2 decimal places")
}

func TestToCents_RejectsOutOfRange(t *testing.T) {
	for _, in := range []string{"100000000000000000000", "92233720368547758.08", "-92233720368547758.09", "1e30"} {
		t.Run(in, func(t *testing.T) {
			_, err := ToCents(decimal.RequireFromString(in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "out of range")
		})
	}

	largest, err := ToCents(decimal.RequireFromString("92233720368547758.07"))
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), largest)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"75.00", 7500, false},
		{"75", 7500, false},
		{" 1,250.5 ", 125050, false},
		{"0.1", 10, false},
		{"-3.25", -325, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.999", 0, true},
		{"100000000000000000000", 0, true},
		{"1e30", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "30.06", FormatCents(3006))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "50.00", FormatCents(5000))
	assert.Equal(t, "-25.00", FormatCents(-2500))
}

package calc

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		kind  error
	}{
		{"decimal string", "1000000", "1000000", nil},
		{"padded string", " 42 ", "42", nil},
		{"json number", json.Number("18446744073709551615"), "18446744073709551615", nil},
		{"integral float", float64(1500), "1500", nil},
		{"int64", int64(7), "7", nil},
		{"uint64 max", uint64(18446744073709551615), "18446744073709551615", nil},
		{"big int", big.NewInt(99), "99", nil},
		{"overflow u64", "18446744073709551616", "", ErrInputRange},
		{"negative string", "-1", "", ErrInputRange},
		{"negative int", -3, "", ErrInputRange},
		{"letters", "12abc", "", ErrMalformedNumeric},
		{"decimal point", "1.5", "", ErrMalformedNumeric},
		{"fractional float", 1.5, "", ErrMalformedNumeric},
		{"unsafe float", float64(1 << 60), "", ErrMalformedNumeric},
		{"nil", nil, "", ErrMalformedNumeric},
		{"empty", "", "", ErrMalformedNumeric},
		{"unsupported", true, "", ErrMalformedNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount("amount", tt.input)
			if tt.kind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseOptionalAmountDefaultsToZero(t *testing.T) {
	for _, v := range []any{nil, "", "  ", json.Number("")} {
		got, err := ParseOptionalAmount("total_contributed", v)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Sign())
	}

	_, err := ParseOptionalAmount("total_contributed", "oops")
	assert.ErrorIs(t, err, ErrMalformedNumeric)
}

func TestParseAmountRequiredMessageNamesField(t *testing.T) {
	_, err := ParseAmount("total_supply", nil)
	assert.EqualError(t, err, "total_supply is required")
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("end_time", int64(1_700_000_000))
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), ts)

	ts, err = ParseTimestamp("end_time", "1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), ts)

	ts, err = ParseTimestamp("end_time", time.Unix(1_700_000_000, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), ts)

	_, err = ParseTimestamp("end_time", 1.5)
	assert.ErrorIs(t, err, ErrMalformedNumeric)

	_, err = ParseTimestamp("end_time", -1)
	assert.ErrorIs(t, err, ErrInputRange)

	_, err = ParseTimestamp("end_time", nil)
	assert.ErrorIs(t, err, ErrMalformedNumeric)

	_, err = ParseTimestamp("end_time", time.Time{})
	assert.ErrorIs(t, err, ErrMalformedNumeric)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("address", " 11111111111111111111111111111111 ")
	require.NoError(t, err)
	assert.Equal(t, "11111111111111111111111111111111", addr)

	_, err = ParseAddress("address", "")
	assert.EqualError(t, err, "address is required")

	_, err = ParseAddress("address", "not-base58-0OIl")
	assert.ErrorIs(t, err, ErrMalformedNumeric)

	_, err = ParseAddress("address", "abc")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(nil))
	assert.Equal(t, "123456789012345678901", FormatAmount(mustBig(t, "123456789012345678901")))
}

package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestVersionNext(t *testing.T) {
	cases := []struct {
		name      string
		current   string
		precision int
		want      string
	}{
		{"zero by tenth", "0.0", 1, "0.1"},
		{"discards stray digits", "0.004", 1, "0.1"},
		{"whole increment", "0.0", 0, "1.0"},
		{"hundredths", "1.23", 2, "1.24"},
		{"hundredths from zero", "0.0", 2, "0.01"},
		{"carries into units", "0.99", 2, "1.00"},
		{"coarser than stored", "1.27", 1, "1.3"},
		{"whole drops fraction", "2.75", 0, "3.0"},
		{"long tail", "0.1", 3, "0.101"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := MustParseVersion(tc.current).Next(tc.precision)
			require.NoError(t, err)
			require.Equal(t, tc.want, next.String())
		})
	}
}

func TestVersionNext_RepeatedIncrementsStayExact(t *testing.T) {
	v := ZeroVersion()
	var err error
	for i := 0; i < 1000; i++ {
		v, err = v.Next(3)
		require.NoError(t, err)
	}
	require.Equal(t, "1.000", v.String())
	require.True(t, v.Equal(MustParseVersion("1")))
}

func TestVersionNext_RejectsInvalidPrecision(t *testing.T) {
	for _, p := range []int{-1, -10, MaxPrecision + 1} {
		_, err := ZeroVersion().Next(p)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidPrecision)

		var pe *InvalidPrecisionError
		require.True(t, errors.As(err, &pe))
		require.Equal(t, p, pe.Precision)
		require.Equal(t, "INVALID_PRECISION", pe.ErrorCode())
	}
}

func TestTruncateDecimal(t *testing.T) {
	cases := []struct {
		in        string
		precision int
		want      string
	}{
		{"0.1004", 1, "0.1"},
		{"1.999", 2, "1.99"},
		{"1.999", 0, "1"},
		{"3.14159", 4, "3.1415"},
		{"2", 3, "2"},
	}
	for _, tc := range cases {
		got, err := TruncateDecimal(decimal.RequireFromString(tc.in), tc.precision)
		require.NoError(t, err)
		require.True(t, got.Equal(decimal.RequireFromString(tc.want)), "truncate(%s, %d) = %s", tc.in, tc.precision, got)
	}

	_, err := TruncateDecimal(decimal.RequireFromString("1.5"), -1)
	require.ErrorIs(t, err, ErrInvalidPrecision)
}

func TestTruncateDecimal_BoundedByFloor(t *testing.T) {
	values := []string{"0", "0.5", "1.23456789", "99.999999", "12345.6789"}
	for _, s := range values {
		v := decimal.RequireFromString(s)
		for d := 0; d <= 8; d++ {
			got, err := TruncateDecimal(v, d)
			require.NoError(t, err)

			unit := decimal.New(1, -int32(d))
			floor := v.Div(unit).Floor().Mul(unit)
			require.True(t, got.GreaterThanOrEqual(floor))
			require.True(t, got.LessThan(floor.Add(unit)))
			require.LessOrEqual(t, -got.Exponent(), int32(d))
		}
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion(" 1.50\n")
	require.NoError(t, err)
	require.Equal(t, "1.50", v.String())
	require.Equal(t, 2, v.Places())
	require.InDelta(t, 1.5, v.Float64(), 1e-12)

	v, err = ParseVersion("5")
	require.NoError(t, err)
	require.Equal(t, "5.0", v.String())

	for _, bad := range []string{"", "abc", "1.2.3", "-1.0", "NaN", "inf"} {
		_, err := ParseVersion(bad)
		require.Error(t, err, "input %q", bad)
		require.ErrorIs(t, err, ErrMalformedVersion)
	}
}

func TestVersionRoundTripsThroughText(t *testing.T) {
	for _, s := range []string{"0.0", "0.1", "1.24", "10.000", "7.0"} {
		v := MustParseVersion(s)
		again, err := ParseVersion(v.String())
		require.NoError(t, err)
		require.True(t, v.Equal(again))
		require.Equal(t, v.String(), again.String())
	}
}

func TestVersionMarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		V Version `json:"v"`
	}{V: MustParseVersion("0.10")})
	require.NoError(t, err)
	require.JSONEq(t, `{"v":"0.10"}`, string(b))
}

func TestZeroVersion(t *testing.T) {
	require.Equal(t, "0.0", ZeroVersion().String())
	require.True(t, ZeroVersion().Decimal().IsZero())
}

package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPrecision is the largest number of decimal places accepted for an increment.
const MaxPrecision = 18

// ErrInvalidPrecision is matched by InvalidPrecisionError.
var ErrInvalidPrecision = errors.New("invalid precision")

// ErrMalformedVersion is matched by MalformedVersionError.
var ErrMalformedVersion = errors.New("malformed version")

// Version is a non-negative exact decimal version number.
//
// places is the number of fractional digits the value is displayed with. It comes
// from the digits of the parsed text, or from the precision of the increment
// that produced it. The text form always has at least one fractional digit.
type Version struct {
	value  decimal.Decimal
	places int32
}

// ZeroVersion returns the initial version, 0.0.
func ZeroVersion() Version {
	return Version{value: decimal.Zero, places: 1}
}

// ParseVersion parses the textual form of a version. Surrounding whitespace is
// ignored. Negative, non-numeric, NaN and infinite inputs are rejected.
func ParseVersion(s string) (Version, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Version{}, &InvalidVersionTextError{Text: s, Reason: "empty"}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Version{}, &InvalidVersionTextError{Text: s, Reason: "not a number"}
	}
	if d.Sign() < 0 {
		return Version{}, &InvalidVersionTextError{Text: s, Reason: "negative"}
	}
	places := int32(0)
	if exp := d.Exponent(); exp < 0 {
		places = -exp
	}
	return Version{value: d, places: places}, nil
}

// MustParseVersion is ParseVersion for literals known to be valid.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Decimal returns the exact value.
func (v Version) Decimal() decimal.Decimal { return v.value }

// Places returns the display precision.
func (v Version) Places() int { return int(v.places) }

// Float64 returns the nearest float64.
func (v Version) Float64() float64 {
	f, _ := v.value.Float64()
	return f
}

// Equal reports whether two versions have the same numeric value.
func (v Version) Equal(o Version) bool { return v.value.Equal(o.value) }

// String renders the version with max(places, 1) fractional digits.
func (v Version) String() string {
	places := v.places
	if places < 1 {
		places = 1
	}
	return v.value.StringFixed(places)
}

// MarshalJSON renders the version as its text form so 0.10 stays 0.10.
func (v Version) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(v.String())), nil
}

// Next returns the version incremented by one unit at the given precision and
// truncated to that precision: precision 0 adds 1, precision n adds 10^-n.
func (v Version) Next(precision int) (Version, error) {
	if err := ValidatePrecision(precision); err != nil {
		return Version{}, err
	}
	increment := decimal.New(1, -int32(precision))
	next, err := TruncateDecimal(v.value.Add(increment), precision)
	if err != nil {
		return Version{}, err
	}
	return Version{value: next, places: int32(precision)}, nil
}

// TruncateDecimal keeps exactly precision digits after the decimal point and
// discards the rest without rounding.
func TruncateDecimal(value decimal.Decimal, precision int) (decimal.Decimal, error) {
	if err := ValidatePrecision(precision); err != nil {
		return decimal.Decimal{}, err
	}
	return value.Truncate(int32(precision)), nil
}

// ValidatePrecision rejects precisions outside [0, MaxPrecision].
func ValidatePrecision(precision int) error {
	if precision < 0 || precision > MaxPrecision {
		return &InvalidPrecisionError{Precision: precision}
	}
	return nil
}

// InvalidPrecisionError is returned for a negative or oversized --update value.
type InvalidPrecisionError struct {
	Precision int
}

func (e *InvalidPrecisionError) Error() string {
	return fmt.Sprintf("invalid precision %d: must be between 0 and %d", e.Precision, MaxPrecision)
}
func (e *InvalidPrecisionError) ErrorCode() string { return "INVALID_PRECISION" }
func (e *InvalidPrecisionError) Context() map[string]string {
	return map[string]string{"precision": strconv.Itoa(e.Precision)}
}
func (e *InvalidPrecisionError) SuggestedAction() string {
	return fmt.Sprintf("pass --update with a value between 0 and %d", MaxPrecision)
}
func (e *InvalidPrecisionError) Is(target error) bool { return target == ErrInvalidPrecision }

// InvalidVersionTextError describes text that is not a valid version.
type InvalidVersionTextError struct {
	Text   string
	Reason string
}

func (e *InvalidVersionTextError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Text, e.Reason)
}
func (e *InvalidVersionTextError) Is(target error) bool { return target == ErrMalformedVersion }

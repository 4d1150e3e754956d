package itch

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TimeUnit is the interpretation of a raw timestamp field. It is part of
// a message type's registered spec, never guessed from the value itself.
type TimeUnit uint8

const (
	// UnitMidnightSeconds is seconds past midnight of the trading session
	// date (see WithSessionDate).
	UnitMidnightSeconds TimeUnit = iota
	UnitSeconds
	UnitMilliseconds
	UnitMicroseconds
	UnitNanoseconds
)

// DecodeConfig carries the per-message-type decode parameters that are
// configuration rather than layout: the timestamp unit, the price scale
// and the session date intraday timestamps are anchored to.
type DecodeConfig struct {
	Unit       TimeUnit
	PriceScale int64
	Session    civil.Date
}

func checkWindow(p []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(p) {
		return fmt.Errorf("%w: [%d:%d) in %d byte payload", ErrWindowOutOfBounds, off, off+n, len(p))
	}
	return nil
}

// DecodeUint reads an n byte big-endian unsigned integer at off.
// n must be 1, 2, 4 or 8.
func DecodeUint(p []byte, off, n int) (uint64, error) {
	switch n {
	case 1, 2, 4, 8:
	default:
		return 0, fmt.Errorf("invalid uint width %d", n)
	}
	if err := checkWindow(p, off, n); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range p[off : off+n] {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// DecodeText reads an n byte fixed-width ASCII field at off and strips the
// space and NUL padding. Non-printable bytes inside the field are kept
// as-is: sparse or blank symbol fields are not an error.
func DecodeText(p []byte, off, n int) (string, error) {
	if err := checkWindow(p, off, n); err != nil {
		return "", err
	}
	return strings.Trim(string(p[off:off+n]), " \x00"), nil
}

// DecodePrice reads an n byte big-endian unsigned integer at off and
// divides it by scale, yielding an exact decimal price.
func DecodePrice(p []byte, off, n int, scale int64) (decimal.Decimal, error) {
	if scale <= 0 {
		return decimal.Decimal{}, fmt.Errorf("invalid price scale %d", scale)
	}
	v, err := DecodeUint(p, off, n)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.New(int64(v), 0).Div(decimal.New(scale, 0)), nil
}

// DecodeTimestamp reads an n byte big-endian unsigned integer at off and
// interprets it according to unit. Intraday units are anchored to the
// session date at UTC midnight.
func DecodeTimestamp(p []byte, off, n int, unit TimeUnit, session civil.Date) (time.Time, error) {
	v, err := DecodeUint(p, off, n)
	if err != nil {
		return time.Time{}, err
	}
	switch unit {
	case UnitMidnightSeconds:
		return session.In(time.UTC).Add(time.Duration(v) * time.Second), nil
	case UnitSeconds:
		return time.Unix(int64(v), 0).UTC(), nil
	case UnitMilliseconds:
		return time.UnixMilli(int64(v)).UTC(), nil
	case UnitMicroseconds:
		return time.UnixMicro(int64(v)).UTC(), nil
	case UnitNanoseconds:
		return time.Unix(0, int64(v)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp unit %d", unit)
}

// DecodeIndicator reads the single-byte indicator at off. Unrecognized
// byte values are not an error: the raw byte is returned and labels as
// "unrecognized".
func DecodeIndicator(p []byte, off int) (SideIndicator, error) {
	if err := checkWindow(p, off, 1); err != nil {
		return 0, err
	}
	return SideIndicator(p[off]), nil
}

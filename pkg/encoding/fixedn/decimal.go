// Package fixedn implements decimal-string conversion for arbitrary-
// precision fixed-point integers, used by pkg/feemath to render and parse
// the bridge's 18-decimal ConversionRate.
package fixedn

import (
	"errors"
	"math/big"
	"strings"
)

// ErrInvalidFormat is returned by FromString when s is not a valid decimal
// number, or carries more fractional digits than prec allows.
var ErrInvalidFormat = errors.New("fixedn: invalid decimal format")

func scaleOf(prec int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(prec)), nil)
}

// ToString renders bi, an integer equal to value*10^prec, as a minimal
// decimal string: trailing fractional zeros (and the decimal point, if the
// fraction is all zero) are dropped.
func ToString(bi *big.Int, prec int) string {
	neg := bi.Sign() < 0
	abs := new(big.Int).Abs(bi)

	scale := scaleOf(prec)
	q, r := new(big.Int).QuoRem(abs, scale, new(big.Int))

	frac := r.String()
	if pad := prec - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	frac = strings.TrimRight(frac, "0")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(q.String())
	if frac != "" {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sb.String()
}

// FromString parses a decimal string into its integer representation
// scaled by 10^prec. It rejects strings carrying more fractional digits
// than prec can hold.
func FromString(s string, prec int) (*big.Int, error) {
	if s == "" {
		return nil, ErrInvalidFormat
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" || (hasFrac && fracPart == "") {
		return nil, ErrInvalidFormat
	}
	if len(fracPart) > prec {
		return nil, ErrInvalidFormat
	}
	fracPart += strings.Repeat("0", prec-len(fracPart))

	digits := intPart + fracPart
	bi, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, ErrInvalidFormat
	}
	if neg {
		bi.Neg(bi)
	}
	return bi, nil
}

package numfmt

import (
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/inf.v0"
)

const maxParseExponent = 400

// Parse reads a number written with the culture's conventions. It accepts
// surrounding whitespace, a leading or trailing sign, parentheses for
// negatives, group separators, the currency symbol and an exponent.
func Parse(s string, c Culture) (*inf.Dec, bool) {
	s = trimSpace(s)
	if s == "" {
		return nil, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = trimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{c.CurrencySymbol, Invariant.CurrencySymbol} {
		if sym != "" {
			s = trimSpace(strings.Replace(s, sym, "", 1))
		}
	}

	switch {
	case strings.HasPrefix(s, c.NegativeSign) && c.NegativeSign != "":
		neg = !neg
		s = s[len(c.NegativeSign):]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, c.NegativeSign) && c.NegativeSign != "":
		neg = !neg
		s = s[:len(s)-len(c.NegativeSign)]
	case strings.HasSuffix(s, "+"):
		s = s[:len(s)-1]
	}
	s = trimSpace(s)

	if c.GroupSeparator != "" && c.GroupSeparator != c.DecimalSeparator {
		s = strings.ReplaceAll(s, c.GroupSeparator, "")
	}
	if c.DecimalSeparator != "." {
		s = strings.Replace(s, c.DecimalSeparator, ".", 1)
	}

	d, ok := parsePlain(s)
	if !ok {
		return nil, false
	}
	if neg {
		d.Neg(d)
	}
	return d, true
}

// parsePlain parses digits[.digits][(e|E)[+|-]digits].
func parsePlain(s string) (*inf.Dec, bool) {
	mantissa, expPart := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, expPart = s[:i], s[i+1:]
		if expPart == "" {
			return nil, false
		}
	}

	intPart, fracPart := mantissa, ""
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart, fracPart = mantissa[:i], mantissa[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return nil, false
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return nil, false
	}

	exp := 0
	if expPart != "" {
		e, err := strconv.Atoi(expPart)
		if err != nil || e > maxParseExponent || e < -maxParseExponent {
			return nil, false
		}
		exp = e
	}

	unscaled, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, false
	}
	return inf.NewDecBig(unscaled, inf.Scale(len(fracPart)-exp)), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// trimSpace also trims the no-break spaces some locales group with.
func trimSpace(s string) string {
	return strings.Trim(s, " \t\r\n\u00a0\u202f")
}

package value

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/inf.v0"
)

// ErrInvalidNumber indicates that a literal is not a valid JSON number.
var ErrInvalidNumber = errors.New("invalid number literal")

// Number is an exact JSON number kept as its literal text.
// Arithmetic is done on demand through inf.Dec so that decimal input like
// "12.50" survives untouched until something asks for a different form.
type Number struct {
	lit string
}

// ParseNumber validates lit as a JSON number literal.
func ParseNumber(lit string) (Number, error) {
	if !isNumberLiteral(lit) {
		return Number{}, fmt.Errorf("%w: %q", ErrInvalidNumber, lit)
	}
	return Number{lit: lit}, nil
}

// IntNumber returns the Number for i.
func IntNumber(i int64) Number {
	return Number{lit: strconv.FormatInt(i, 10)}
}

// FloatNumber returns the shortest Number that round-trips to f.
// f must be finite.
func FloatNumber(f float64) Number {
	return Number{lit: formatFloat(f)}
}

// maxPlainScale bounds the scale DecNumber writes out digit by digit.
// Wider scales keep exponent notation.
const maxPlainScale = 1000

// DecNumber returns the Number for d, keeping its scale ("12.50" stays "12.50").
func DecNumber(d *inf.Dec) Number {
	if s := d.Scale(); s > maxPlainScale || s < -maxPlainScale {
		return Number{lit: d.UnscaledBig().String() + "e" + strconv.FormatInt(-int64(s), 10)}
	}
	return Number{lit: d.String()}
}

// Exponent returns the decimal exponent of the leading digit of d
// (2 for 123, -2 for 0.05) without expanding it. Zero has exponent 0.
func Exponent(d *inf.Dec) int64 {
	if d.Sign() == 0 {
		return 0
	}
	digits := len(new(big.Int).Abs(d.UnscaledBig()).String())
	return int64(digits) - 1 - int64(d.Scale())
}

// String returns the literal text.
func (n Number) String() string {
	return n.lit
}

// Dec returns the exact decimal value of n.
func (n Number) Dec() *inf.Dec {
	d, ok := decFromLiteral(n.lit)
	if !ok {
		return new(inf.Dec)
	}
	return d
}

// Float64 returns the nearest float64.
func (n Number) Float64() float64 {
	// Out-of-range literals come back as ±Inf.
	f, _ := strconv.ParseFloat(n.lit, 64)
	return f
}

// Int64 returns n as an int64 when it is integral and fits.
func (n Number) Int64() (int64, bool) {
	if !strings.ContainsAny(n.lit, ".eE") {
		i, err := strconv.ParseInt(n.lit, 10, 64)
		return i, err == nil
	}
	d, ok := decFromLiteral(n.lit)
	if !ok {
		return 0, false
	}
	if d.Sign() == 0 {
		return 0, true
	}
	// Check the magnitude first: rounding 1e50000000 would expand every digit.
	if e := Exponent(d); e < 0 || e > 18 {
		return 0, false
	}
	r := new(inf.Dec).Round(d, 0, inf.RoundExact)
	if r == nil {
		return 0, false
	}
	u := r.UnscaledBig()
	if !u.IsInt64() {
		return 0, false
	}
	return u.Int64(), true
}

// IsIntegral reports whether n has no fractional part.
func (n Number) IsIntegral() bool {
	d, ok := decFromLiteral(n.lit)
	if !ok {
		return false
	}
	switch {
	case d.Sign() == 0, d.Scale() <= 0:
		return true
	case Exponent(d) < 0:
		return false
	}
	return new(inf.Dec).Round(d, 0, inf.RoundExact) != nil
}

// Sign returns -1, 0 or +1.
func (n Number) Sign() int {
	return n.Dec().Sign()
}

// Compact returns the most compact text for n: integer text when n is
// integral and fits in an int64, otherwise the shortest float text.
func (n Number) Compact() string {
	if i, ok := n.Int64(); ok {
		return strconv.FormatInt(i, 10)
	}
	f := n.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return n.lit
	}
	return formatFloat(f)
}

// Normalize returns n in its native form: integral when exact, float otherwise.
func (n Number) Normalize() Number {
	return Number{lit: n.Compact()}
}

// Equal reports numeric equality.
func (n Number) Equal(other Number) bool {
	if n.lit == other.lit {
		return true
	}
	a, b := n.Dec(), other.Dec()
	if a.Sign() != b.Sign() {
		return false
	}
	if a.Sign() == 0 {
		return true
	}
	if Exponent(a) != Exponent(b) {
		return false
	}
	return a.Cmp(b) == 0
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// decFromLiteral converts a JSON number literal into an exact decimal.
func decFromLiteral(lit string) (*inf.Dec, bool) {
	mant, exp := lit, 0
	if i := strings.IndexAny(lit, "eE"); i >= 0 {
		e, err := strconv.Atoi(lit[i+1:])
		if err != nil || e > math.MaxInt32/2 || e < -math.MaxInt32/2 {
			return nil, false
		}
		mant, exp = lit[:i], e
	}
	d, ok := new(inf.Dec).SetString(mant)
	if !ok {
		return nil, false
	}
	d.SetScale(d.Scale() - inf.Scale(exp))
	return d, true
}

// isNumberLiteral implements the JSON number grammar.
func isNumberLiteral(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

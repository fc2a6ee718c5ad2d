package numfmt

import (
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/inf.v0"

	"github.com/vyrodovalexey/avamap/internal/value"
)

const (
	defaultFixedPrecision      = 2
	defaultExponentPrecision   = 6
	generalScientificThreshold = 28
	maxPrecision               = 99

	// maxExponent bounds the magnitudes formatted digit by digit. Anything
	// wider falls back to the compact number text.
	maxExponent = 1000
)

// FormatNumber formats n with the given specifier. An empty specifier means "G".
func FormatNumber(n value.Number, spec string, c Culture) string {
	return Format(n.Dec(), spec, c)
}

// Format formats d with the given specifier. An empty specifier means "G".
// A single letter that is not a standard specifier is treated as a custom
// pattern.
func Format(d *inf.Dec, spec string, c Culture) string {
	if s := d.Scale(); d.Sign() == 0 && (s > maxExponent || s < -maxExponent) {
		d = new(inf.Dec)
	}
	if e := value.Exponent(d); e > maxExponent || e < -maxExponent {
		return value.DecNumber(d).Compact()
	}
	if spec == "" {
		spec = "G"
	}
	if letter, precision, ok := parseStandard(spec); ok {
		return formatStandard(d, letter, precision, c)
	}
	return formatCustom(d, spec, c)
}

// parseStandard splits a standard specifier into its letter and precision.
// Precision is -1 when omitted.
func parseStandard(spec string) (letter byte, precision int, ok bool) {
	if spec == "" || !strings.ContainsRune("CcDdEeFfGgNnPpRrXx", rune(spec[0])) {
		return 0, 0, false
	}
	if len(spec) == 1 {
		return spec[0], -1, true
	}
	digits := spec[1:]
	if len(digits) > 2 {
		return 0, 0, false
	}
	p, err := strconv.Atoi(digits)
	if err != nil || p < 0 {
		return 0, 0, false
	}
	return spec[0], min(p, maxPrecision), true
}

//nolint:gocyclo // one branch per specifier
func formatStandard(d *inf.Dec, letter byte, precision int, c Culture) string {
	upper := letter >= 'A' && letter <= 'Z'
	switch letter | 0x20 {
	case 'c':
		if precision < 0 {
			precision = c.CurrencyDecimals
		}
		neg, ip, fp := splitDec(roundDec(d, precision))
		amount := joinParts(group(ip, c.GroupSeparator), fp, c)
		if c.CurrencySuffix {
			amount = amount + " " + c.CurrencySymbol
		} else {
			amount = c.CurrencySymbol + amount
		}
		return signed(neg, ip+fp, amount, c)

	case 'd':
		i, ok := integral(d)
		if !ok {
			return formatStandard(d, 'G', -1, c)
		}
		neg := i.Sign() < 0
		digits := new(big.Int).Abs(i).String()
		if pad := precision - len(digits); pad > 0 {
			digits = strings.Repeat("0", pad) + digits
		}
		return signed(neg, digits, digits, c)

	case 'e':
		if precision < 0 {
			precision = defaultExponentPrecision
		}
		neg, ip, fp, exp := scientific(d, 1, precision)
		text := joinParts(ip, fp, c) + exponentText(exp, upper, true, 3)
		return signed(neg, ip+fp, text, c)

	case 'f':
		if precision < 0 {
			precision = defaultFixedPrecision
		}
		neg, ip, fp := splitDec(roundDec(d, precision))
		return signed(neg, ip+fp, joinParts(ip, fp, c), c)

	case 'g':
		return formatGeneral(d, precision, upper, c)

	case 'n':
		if precision < 0 {
			precision = defaultFixedPrecision
		}
		neg, ip, fp := splitDec(roundDec(d, precision))
		return signed(neg, ip+fp, joinParts(group(ip, c.GroupSeparator), fp, c), c)

	case 'p':
		if precision < 0 {
			precision = defaultFixedPrecision
		}
		neg, ip, fp := splitDec(roundDec(shift(d, -2), precision))
		text := strings.Replace(c.PercentPattern, "{n}", joinParts(group(ip, c.GroupSeparator), fp, c), 1)
		return signed(neg, ip+fp, text, c)

	case 'r':
		n := value.DecNumber(d)
		text := n.Compact()
		neg := strings.HasPrefix(text, "-")
		text = strings.TrimPrefix(text, "-")
		text = strings.Replace(text, ".", c.DecimalSeparator, 1)
		return signed(neg, "1", text, c)

	case 'x':
		i, ok := integral(d)
		if !ok || !i.IsInt64() {
			return formatStandard(d, 'G', -1, c)
		}
		hex := strconv.FormatUint(uint64(i.Int64()), 16)
		if upper {
			hex = strings.ToUpper(hex)
		}
		if pad := precision - len(hex); pad > 0 {
			hex = strings.Repeat("0", pad) + hex
		}
		return hex
	}
	return formatCustom(d, string(letter), c)
}

// formatGeneral renders the most compact of fixed and scientific notation.
// Without a precision every significant digit of d is kept, including
// trailing fractional zeros.
func formatGeneral(d *inf.Dec, precision int, upper bool, c Culture) string {
	if d.Sign() == 0 {
		return "0"
	}

	if precision < 0 {
		exp := exponent(d)
		if exp >= generalScientificThreshold || exp < -5 {
			neg, ip, fp, e := scientific(d, 1, significantDigits(d)-1)
			fp = strings.TrimRight(fp, "0")
			return signed(neg, "1", joinParts(ip, fp, c)+exponentText(e, upper, true, 2), c)
		}
		neg, ip, fp := splitDec(d)
		return signed(neg, ip+fp, joinParts(ip, fp, c), c)
	}

	if precision == 0 {
		precision = 1
	}
	rounded := roundDec(d, precision-1-exponent(d))
	if rounded.Sign() == 0 {
		return "0"
	}
	exp := exponent(rounded)
	if exp > -5 && exp < precision {
		neg, ip, fp := splitDec(rounded)
		fp = strings.TrimRight(fp, "0")
		return signed(neg, ip+fp, joinParts(ip, fp, c), c)
	}
	neg, ip, fp, e := scientific(d, 1, precision-1)
	fp = strings.TrimRight(fp, "0")
	return signed(neg, ip+fp, joinParts(ip, fp, c)+exponentText(e, upper, true, 2), c)
}

// roundDec rounds d to scale fractional digits, halves away from zero.
func roundDec(d *inf.Dec, scale int) *inf.Dec {
	return new(inf.Dec).Round(d, inf.Scale(scale), inf.RoundHalfUp)
}

// shift returns d / 10^e.
func shift(d *inf.Dec, e int) *inf.Dec {
	return inf.NewDecBig(new(big.Int).Set(d.UnscaledBig()), d.Scale()+inf.Scale(e))
}

// exponent returns the decimal exponent of the leading digit of a non-zero d.
func exponent(d *inf.Dec) int {
	return significantDigits(d) - 1 - int(d.Scale())
}

func significantDigits(d *inf.Dec) int {
	return len(new(big.Int).Abs(d.UnscaledBig()).String())
}

// scientific returns d as a mantissa with intDigits integral digits and
// fracDigits rounded fractional digits, plus the exponent.
func scientific(d *inf.Dec, intDigits, fracDigits int) (neg bool, ip, fp string, exp int) {
	if d.Sign() == 0 {
		return false, strings.Repeat("0", intDigits), strings.Repeat("0", fracDigits), 0
	}
	exp = exponent(d) - (intDigits - 1)
	neg, ip, fp = splitDec(roundDec(shift(d, exp), fracDigits))
	if len(ip) > intDigits {
		exp++
		neg, ip, fp = splitDec(roundDec(shift(d, exp), fracDigits))
	}
	return neg, ip, fp, exp
}

// splitDec returns the sign, integral digits and fractional digits of d.
// The integral part is "0" when |d| < 1.
func splitDec(d *inf.Dec) (neg bool, ip, fp string) {
	neg = d.Sign() < 0
	digits := new(big.Int).Abs(d.UnscaledBig()).String()
	scale := int(d.Scale())
	if scale <= 0 {
		if digits != "0" {
			digits += strings.Repeat("0", -scale)
		}
		return neg, digits, ""
	}
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	return neg, digits[:len(digits)-scale], digits[len(digits)-scale:]
}

// integral returns d as an integer when it has no fractional part.
func integral(d *inf.Dec) (*big.Int, bool) {
	rounded := new(inf.Dec).Round(d, 0, inf.RoundDown)
	if rounded.Cmp(d) != 0 {
		return nil, false
	}
	_, ip, _ := splitDec(rounded)
	i, ok := new(big.Int).SetString(ip, 10)
	if !ok {
		return nil, false
	}
	if d.Sign() < 0 {
		i.Neg(i)
	}
	return i, true
}

func joinParts(ip, fp string, c Culture) string {
	if fp == "" {
		return ip
	}
	return ip + c.DecimalSeparator + fp
}

// signed prefixes text with the negative sign unless digits are all zero.
func signed(neg bool, digits, text string, c Culture) string {
	if neg && strings.Trim(digits, "0") != "" {
		return c.NegativeSign + text
	}
	return text
}

func group(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

func exponentText(exp int, upper, alwaysSign bool, minDigits int) string {
	var sb strings.Builder
	if upper {
		sb.WriteByte('E')
	} else {
		sb.WriteByte('e')
	}
	switch {
	case exp < 0:
		sb.WriteByte('-')
		exp = -exp
	case alwaysSign:
		sb.WriteByte('+')
	}
	digits := strconv.Itoa(exp)
	if pad := minDigits - len(digits); pad > 0 {
		sb.WriteString(strings.Repeat("0", pad))
	}
	sb.WriteString(digits)
	return sb.String()
}

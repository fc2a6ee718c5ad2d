package converter

import (
	"context"
	"math"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/inf.v0"

	"github.com/vyrodovalexey/avamap/internal/datefmt"
	"github.com/vyrodovalexey/avamap/internal/numfmt"
	"github.com/vyrodovalexey/avamap/internal/rules"
	"github.com/vyrodovalexey/avamap/internal/value"
)

var (
	minInt32 = big.NewInt(math.MinInt32)
	maxInt32 = big.NewInt(math.MaxInt32)
)

// cultureFor resolves the culture a rule asks for, falling back to the
// configured default when none is named or the name is unknown.
func (b *builtins) cultureFor(param rules.Param) numfmt.Culture {
	name := param.FieldString("", "culture")
	if name == "" {
		return b.culture
	}
	c, err := numfmt.Lookup(name)
	if err != nil {
		return b.culture
	}
	return c
}

// format renders v with a format specifier.
// Param: "N2" | {format: "N2", culture: "de"}. Numbers use the numeric
// format language, strings that parse as dates use the date format language,
// anything else renders as JSON text.
func (b *builtins) format(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	spec := param.PrimaryString("", "format")

	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		return value.String(numfmt.FormatNumber(n, spec, b.cultureFor(param))), nil
	case value.KindString:
		s, _ := v.AsString()
		if parsed, ok := datefmt.Parse(s); ok {
			return value.String(datefmt.Format(parsed, spec)), nil
		}
	}
	return value.String(value.JSONText(v)), nil
}

// number parses v into a typed number.
// Param: "int" | {type: "int", format: "N2", culture: "de"}. Types: int,
// long, float, double, decimal (default). Unparsable input, booleans and
// out-of-range values yield Null.
func (b *builtins) number(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	culture := b.cultureFor(param)

	var d *inf.Dec
	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		d = n.Dec()
	case value.KindString:
		s, _ := v.AsString()
		parsed, ok := numfmt.Parse(s, culture)
		if !ok {
			return value.Null(), nil
		}
		d = parsed
	default:
		return value.Null(), nil
	}

	typed := toNumberType(d, strings.ToLower(param.PrimaryString("decimal", "type")))
	if typed.IsNull() {
		return typed, nil
	}

	if spec := param.FieldString("", "format"); spec != "" {
		n, _ := typed.AsNumber()
		return value.String(numfmt.FormatNumber(n, spec, culture)), nil
	}
	return typed, nil
}

func toNumberType(d *inf.Dec, typ string) value.Value {
	switch typ {
	case "int", "int32", "integer":
		i, ok := roundToInt(d)
		if !ok || i.Cmp(minInt32) < 0 || i.Cmp(maxInt32) > 0 {
			return value.Null()
		}
		return value.Int(i.Int64())
	case "long", "int64":
		i, ok := roundToInt(d)
		if !ok || !i.IsInt64() {
			return value.Null()
		}
		return value.Int(i.Int64())
	case "float", "single":
		f, _ := strconv.ParseFloat(value.DecNumber(d).String(), 32)
		f32 := float32(f)
		if math.IsInf(float64(f32), 0) || math.IsNaN(float64(f32)) {
			return value.Null()
		}
		n, err := value.ParseNumber(strconv.FormatFloat(float64(f32), 'g', -1, 32))
		if err != nil {
			return value.Null()
		}
		return value.Num(n)
	case "double":
		f, _ := strconv.ParseFloat(value.DecNumber(d).String(), 64)
		return value.Float(f)
	default:
		return value.Decimal(d)
	}
}

// roundToInt rounds half to even. Magnitudes past any int64 report false
// before rounding so that huge exponents are never expanded.
func roundToInt(d *inf.Dec) (*big.Int, bool) {
	switch e := value.Exponent(d); {
	case d.Sign() == 0 || e < -1:
		return new(big.Int), true
	case e > 18:
		return nil, false
	}
	rounded := new(inf.Dec).Round(d, 0, inf.RoundHalfEven)
	return new(big.Int).Set(rounded.UnscaledBig()), true
}

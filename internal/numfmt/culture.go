// Package numfmt implements the numeric format mini-language used by the
// format and number operators, together with culture-specific separators.
//
// Standard specifiers are a single letter with an optional precision
// (C, D, E, F, G, N, P, R, X). Anything else is a custom pattern built from
// 0 # . , % ‰ E+0 ; 'literal' "literal" and \x.
package numfmt

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrUnknownCulture indicates a culture name that is not a valid language tag.
var ErrUnknownCulture = errors.New("unknown culture")

// Culture names with special meaning.
const (
	CultureInvariant = "invariant"
	CultureCurrent   = "current"
)

// Culture carries the number conventions of a locale.
type Culture struct {
	// Name is the culture name as requested.
	Name string

	// DecimalSeparator separates the integral and fractional parts.
	DecimalSeparator string

	// GroupSeparator separates thousands groups. May be empty.
	GroupSeparator string

	// NegativeSign prefixes negative numbers.
	NegativeSign string

	// CurrencySymbol is used by the C specifier.
	CurrencySymbol string

	// CurrencyDecimals is the default precision of the C specifier.
	CurrencyDecimals int

	// CurrencySuffix places the symbol after the amount, separated by a space.
	CurrencySuffix bool

	// PercentPattern renders a percentage; "{n}" is replaced with the number.
	PercentPattern string
}

// Invariant is the culture-independent convention.
var Invariant = Culture{
	Name:             CultureInvariant,
	DecimalSeparator: ".",
	GroupSeparator:   ",",
	NegativeSign:     "-",
	CurrencySymbol:   "¤",
	CurrencyDecimals: 2,
	PercentPattern:   "{n} %",
}

var cultureCache sync.Map // map[string]Culture

// Lookup returns the culture for name: "" or "invariant" for Invariant,
// "current" for the process locale, otherwise a BCP 47 language tag such as
// "de", "de-DE" or "fr_FR".
func Lookup(name string) (Culture, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", CultureInvariant:
		return Invariant, nil
	case CultureCurrent:
		return Current(), nil
	}

	if cached, ok := cultureCache.Load(key); ok {
		return cached.(Culture), nil
	}

	tag, err := language.Parse(strings.ReplaceAll(key, "_", "-"))
	if err != nil {
		return Invariant, fmt.Errorf("%w: %q: %w", ErrUnknownCulture, name, err)
	}

	c := fromTag(tag)
	c.Name = name
	cultureCache.Store(key, c)
	return c, nil
}

// Current returns the culture named by LC_ALL, LC_NUMERIC or LANG, in that
// order. Unset, "C", "POSIX" and unparsable locales resolve to Invariant.
func Current() Culture {
	for _, env := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		raw := os.Getenv(env)
		if raw == "" {
			continue
		}
		locale := raw
		if i := strings.IndexAny(locale, ".@"); i >= 0 {
			locale = locale[:i]
		}
		if locale == "" || locale == "C" || locale == "POSIX" {
			return Invariant
		}
		c, err := Lookup(locale)
		if err != nil {
			return Invariant
		}
		return c
	}
	return Invariant
}

// fromTag derives separators by formatting probe numbers with the locale's
// printer.
func fromTag(tag language.Tag) Culture {
	c := Invariant
	p := message.NewPrinter(tag)

	decimal := p.Sprint(number.Decimal(1234567.5, number.MinFractionDigits(1), number.MaxFractionDigits(1)))
	if group, dec, ok := separators(decimal); ok {
		c.GroupSeparator = group
		c.DecimalSeparator = dec
	}

	percent := p.Sprint(number.Percent(0.5))
	if pattern, ok := percentPattern(percent); ok {
		c.PercentPattern = pattern
	}

	c.CurrencySymbol, c.CurrencyDecimals = currencyOf(tag)
	c.CurrencySuffix = currencySuffix(tag)
	return c
}

// separators extracts the group and decimal separators from a rendering of
// 1234567.5. Locales that do not group yield an empty group separator.
func separators(s string) (group, decimal string, ok bool) {
	var runs, seps []string
	var cur strings.Builder
	inDigits := false
	for _, r := range s {
		isDigit := unicode.IsDigit(r)
		if cur.Len() > 0 && isDigit != inDigits {
			if inDigits {
				runs = append(runs, cur.String())
			} else if len(runs) > 0 {
				seps = append(seps, cur.String())
			}
			cur.Reset()
		}
		inDigits = isDigit
		cur.WriteRune(r)
	}
	if cur.Len() > 0 && inDigits {
		runs = append(runs, cur.String())
	}

	switch {
	case len(runs) == 4 && len(seps) == 3:
		return seps[0], seps[2], true
	case len(runs) == 2 && len(seps) == 1:
		return "", seps[0], true
	default:
		return "", "", false
	}
}

func percentPattern(s string) (string, bool) {
	start, end := -1, -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			end = i + len(string(r))
		} else if start >= 0 {
			break
		}
	}
	if start < 0 {
		return "", false
	}
	return s[:start] + "{n}" + s[end:], true
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"RUB": "₽",
	"KRW": "₩",
	"UAH": "₴",
	"TRY": "₺",
	"PLN": "zł",
	"CZK": "Kč",
	"BRL": "R$",
	"CAD": "$",
	"AUD": "$",
	"CHF": "CHF",
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr.",
}

func currencyOf(tag language.Tag) (string, int) {
	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		return Invariant.CurrencySymbol, Invariant.CurrencyDecimals
	}
	scale, _ := currency.Standard.Rounding(unit)
	code := unit.String()
	if sym, ok := currencySymbols[code]; ok {
		return sym, scale
	}
	return code, scale
}

var suffixLanguages = map[string]bool{
	"bg": true, "cs": true, "da": true, "de": true, "el": true, "es": true,
	"et": true, "fi": true, "fr": true, "hr": true, "hu": true, "it": true,
	"lt": true, "lv": true, "nb": true, "no": true, "pl": true, "ro": true,
	"ru": true, "sk": true, "sl": true, "sv": true, "uk": true,
}

func currencySuffix(tag language.Tag) bool {
	base, _ := tag.Base()
	if base.String() == "pt" {
		region, _ := tag.Region()
		return region.String() == "PT"
	}
	return suffixLanguages[base.String()]
}

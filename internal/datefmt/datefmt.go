// Package datefmt detects date/time strings and renders them with the
// date format mini-language used by the format operator.
//
// Standard specifiers are single letters (d D f F g G M O R s t T u U Y).
// Custom patterns use yyyy MM MMM MMMM dd ddd dddd HH hh mm ss f..fffffff
// F..FFFFFFF tt zzz K, quoted literals and \x escapes.
package datefmt

import (
	"strconv"
	"strings"
	"time"
)

// Parsed is a detected date/time together with whether the source text
// carried an explicit offset.
type Parsed struct {
	Time      time.Time
	HasOffset bool
}

type layout struct {
	layout    string
	hasOffset bool
}

var layouts = []layout{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04:05.999999999Z07:00", true},
	{"2006-01-02 15:04:05.999999999", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02", false},
	{"2006/01/02", false},
	{"2006/01/02 15:04:05", false},
	{"01/02/2006", false},
	{"01/02/2006 15:04:05", false},
	{"01/02/2006 15:04", false},
	{"1/2/2006", false},
	{"1/2/2006 15:04:05", false},
	{"1/2/2006 3:04:05 PM", false},
	{time.RFC1123, true},
	{time.RFC1123Z, true},
	{time.RFC850, true},
	{time.ANSIC, false},
	{"Monday, 02 January 2006", false},
	{"Monday, 02 January 2006 15:04:05", false},
	{"02 January 2006", false},
	{"January 2, 2006", false},
	{"2 Jan 2006", false},
	{"2 Jan 2006 15:04:05", false},
}

// Parse tries the supported layouts in order.
func Parse(s string) (Parsed, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 6 {
		return Parsed{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return Parsed{Time: t, HasOffset: l.hasOffset}, true
		}
	}
	return Parsed{}, false
}

// Format renders p with spec. An empty spec means "G".
func Format(p Parsed, spec string) string {
	if spec == "" {
		spec = "G"
	}
	if len(spec) == 1 {
		if pattern, t, ok := standard(p, spec[0]); ok {
			return formatCustom(Parsed{Time: t, HasOffset: p.HasOffset}, pattern)
		}
	}
	return formatCustom(p, spec)
}

// standard expands a standard specifier into a custom pattern using the
// invariant culture's patterns. R, u and U convert to UTC first.
func standard(p Parsed, letter byte) (string, time.Time, bool) {
	t := p.Time
	switch letter {
	case 'd':
		return "MM/dd/yyyy", t, true
	case 'D':
		return "dddd, dd MMMM yyyy", t, true
	case 'f':
		return "dddd, dd MMMM yyyy HH:mm", t, true
	case 'F':
		return "dddd, dd MMMM yyyy HH:mm:ss", t, true
	case 'g':
		return "MM/dd/yyyy HH:mm", t, true
	case 'G':
		return "MM/dd/yyyy HH:mm:ss", t, true
	case 'M', 'm':
		return "MMMM dd", t, true
	case 'O', 'o':
		return "yyyy'-'MM'-'dd'T'HH':'mm':'ss'.'fffffffK", t, true
	case 'R', 'r':
		return "ddd, dd MMM yyyy HH':'mm':'ss 'GMT'", t.UTC(), true
	case 's':
		return "yyyy'-'MM'-'dd'T'HH':'mm':'ss", t, true
	case 't':
		return "HH:mm", t, true
	case 'T':
		return "HH:mm:ss", t, true
	case 'u':
		return "yyyy'-'MM'-'dd HH':'mm':'ss'Z'", t.UTC(), true
	case 'U':
		return "dddd, dd MMMM yyyy HH:mm:ss", t.UTC(), true
	case 'Y', 'y':
		return "yyyy MMMM", t, true
	default:
		return "", t, false
	}
}

//nolint:gocyclo // one branch per pattern letter
func formatCustom(p Parsed, pattern string) string {
	t := p.Time
	runes := []rune(pattern)
	var sb strings.Builder

	for i := 0; i < len(runes); {
		r := runes[i]
		n := repeat(runes, i)

		switch r {
		case '\'', '"':
			end := i + 1
			for end < len(runes) && runes[end] != r {
				end++
			}
			sb.WriteString(string(runes[i+1 : min(end, len(runes))]))
			i = end + 1
			continue
		case '\\':
			if i+1 < len(runes) {
				sb.WriteRune(runes[i+1])
			}
			i += 2
			continue
		case '%':
			i++
			continue
		case 'y':
			year := t.Year()
			switch n {
			case 1:
				sb.WriteString(strconv.Itoa(year % 100))
			case 2:
				sb.WriteString(pad(year%100, 2))
			default:
				sb.WriteString(pad(year, n))
			}
		case 'M':
			switch n {
			case 1:
				sb.WriteString(strconv.Itoa(int(t.Month())))
			case 2:
				sb.WriteString(pad(int(t.Month()), 2))
			case 3:
				sb.WriteString(t.Month().String()[:3])
			default:
				sb.WriteString(t.Month().String())
			}
		case 'd':
			switch n {
			case 1:
				sb.WriteString(strconv.Itoa(t.Day()))
			case 2:
				sb.WriteString(pad(t.Day(), 2))
			case 3:
				sb.WriteString(t.Weekday().String()[:3])
			default:
				sb.WriteString(t.Weekday().String())
			}
		case 'H':
			sb.WriteString(padN(t.Hour(), n))
		case 'h':
			hour := t.Hour() % 12
			if hour == 0 {
				hour = 12
			}
			sb.WriteString(padN(hour, n))
		case 'm':
			sb.WriteString(padN(t.Minute(), n))
		case 's':
			sb.WriteString(padN(t.Second(), n))
		case 'f', 'F':
			digits := fraction(t, min(n, 7), r == 'F')
			if digits == "" && strings.HasSuffix(sb.String(), ".") {
				trimmed := strings.TrimSuffix(sb.String(), ".")
				sb.Reset()
				sb.WriteString(trimmed)
			}
			sb.WriteString(digits)
		case 't':
			ampm := "AM"
			if t.Hour() >= 12 {
				ampm = "PM"
			}
			if n == 1 {
				ampm = ampm[:1]
			}
			sb.WriteString(ampm)
		case 'z':
			sb.WriteString(offset(t, n))
		case 'K':
			if p.HasOffset {
				if _, off := t.Zone(); off == 0 && t.Location() == time.UTC {
					sb.WriteByte('Z')
				} else {
					sb.WriteString(offset(t, 3))
				}
			}
		case 'g':
			sb.WriteString("A.D.")
		default:
			sb.WriteString(strings.Repeat(string(r), n))
		}
		i += n
	}
	return sb.String()
}

// repeat counts how many times runes[i] repeats from i.
func repeat(runes []rune, i int) int {
	n := 1
	for i+n < len(runes) && runes[i+n] == runes[i] {
		n++
	}
	return n
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

func padN(v, n int) string {
	if n == 1 {
		return strconv.Itoa(v)
	}
	return pad(v, 2)
}

// fraction renders the first n digits of the fractional second. The F form
// trims trailing zeros and renders nothing for zero.
func fraction(t time.Time, n int, trim bool) string {
	digits := pad(t.Nanosecond(), 9)[:n]
	if trim {
		digits = strings.TrimRight(digits, "0")
	}
	return digits
}

func offset(t time.Time, n int) string {
	_, secs := t.Zone()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	hours, minutes := secs/3600, (secs%3600)/60
	switch n {
	case 1:
		return sign + strconv.Itoa(hours)
	case 2:
		return sign + pad(hours, 2)
	default:
		return sign + pad(hours, 2) + ":" + pad(minutes, 2)
	}
}

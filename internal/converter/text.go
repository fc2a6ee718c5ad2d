package converter

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vyrodovalexey/avamap/internal/rules"
	"github.com/vyrodovalexey/avamap/internal/value"
)

// Case changes the letter case of the text form of v.
// Param: "upper" | {case: "upper"}. Modes: upper, lower (default), title,
// camel, pascal, kebab, snake. Unknown modes leave the text unchanged.
func Case(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	mode := strings.ToLower(param.PrimaryString("lower", "case"))
	return value.String(applyCase(value.Text(v), mode)), nil
}

func applyCase(text, mode string) string {
	switch mode {
	case "upper":
		return strings.ToUpper(text)
	case "lower":
		return strings.ToLower(text)
	case "title":
		return cases.Title(language.Und).String(text)
	case "camel":
		return joinWords(splitWords(text), false)
	case "pascal":
		return joinWords(splitWords(text), true)
	case "kebab":
		return delimit(text, '-')
	case "snake":
		return delimit(text, '_')
	default:
		return text
	}
}

func isWordSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '_' || r == '-'
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, isWordSeparator)
}

// joinWords capitalizes every word but the first, which is capitalized only
// when upperFirst is set.
func joinWords(words []string, upperFirst bool) string {
	var sb strings.Builder
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		if i > 0 || upperFirst {
			runes[0] = unicode.ToUpper(runes[0])
		}
		sb.WriteString(string(runes))
	}
	return sb.String()
}

// delimit lower-cases text and separates words with sep. Word boundaries are
// separators and lower-or-digit to upper transitions.
func delimit(text string, sep rune) string {
	var sb strings.Builder
	var prev rune
	pending := false
	for _, r := range text {
		if isWordSeparator(r) {
			pending = sb.Len() > 0
			prev = r
			continue
		}
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			pending = true
		}
		if pending {
			sb.WriteRune(sep)
			pending = false
		}
		sb.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return sb.String()
}

// Trim removes leading and/or trailing characters from the text form of v.
// Param: "start" | {type: "start", chars: "xy"}. Types: start/left,
// end/right, both/all (default). Without chars, whitespace is trimmed.
func Trim(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	text := value.Text(v)
	mode := strings.ToLower(param.PrimaryString("both", "type"))
	chars := param.FieldString("", "chars")

	var left, right bool
	switch mode {
	case "start", "left":
		left = true
	case "end", "right":
		right = true
	default:
		left, right = true, true
	}

	if chars == "" {
		if left {
			text = strings.TrimLeftFunc(text, unicode.IsSpace)
		}
		if right {
			text = strings.TrimRightFunc(text, unicode.IsSpace)
		}
		return value.String(text), nil
	}

	if left {
		text = strings.TrimLeft(text, chars)
	}
	if right {
		text = strings.TrimRight(text, chars)
	}
	return value.String(text), nil
}

// replace substitutes occurrences in the text form of v.
// Param: {from|search, to|replace, useRegex|regex, ignoreCase}. A pattern
// that fails to compile or times out falls back to a literal replace.
func (b *builtins) replace(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	text := value.Text(v)
	if !param.IsFull() {
		return value.String(text), nil
	}

	from := param.FieldString("", "from", "search")
	to := param.FieldString("", "to", "replace")
	useRegex := param.FieldBool(false, "useRegex", "regex")
	ignoreCase := param.FieldBool(false, "ignoreCase")

	if from == "" {
		return value.String(text), nil
	}

	if useRegex {
		if re, err := b.regexes.compile(from, ignoreCase); err == nil {
			if out, err := re.Replace(text, to, -1, -1); err == nil {
				return value.String(out), nil
			}
		}
	}

	if ignoreCase {
		return value.String(replaceFold(text, from, to)), nil
	}
	return value.String(strings.ReplaceAll(text, from, to)), nil
}

// replaceFold replaces every case-insensitive occurrence of from, comparing
// rune by rune with simple case mapping.
func replaceFold(text, from, to string) string {
	src := []rune(text)
	pat := []rune(from)

	var sb strings.Builder
	i := 0
	for i < len(src) {
		if i+len(pat) <= len(src) && foldMatch(src[i:i+len(pat)], pat) {
			sb.WriteString(to)
			i += len(pat)
			continue
		}
		sb.WriteRune(src[i])
		i++
	}
	return sb.String()
}

func foldMatch(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] && unicode.ToLower(a[i]) != unicode.ToLower(b[i]) && unicode.ToUpper(a[i]) != unicode.ToUpper(b[i]) {
			return false
		}
	}
	return true
}

// Substring extracts a rune range from the text form of v.
// Param: {start, length, end}. Negative start and end count from the end of
// the text; end takes precedence over length.
func Substring(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	runes := []rune(value.Text(v))
	n := len(runes)

	start, _ := param.FieldInt("start")
	if start < 0 {
		start += n
	}
	start = clamp(start, 0, n)

	if end, ok := param.FieldInt("end"); ok {
		if end < 0 {
			end += n
		}
		end = clamp(end, 0, n)
		if end <= start {
			return value.String(""), nil
		}
		return value.String(string(runes[start:end])), nil
	}

	if length, ok := param.FieldInt("length"); ok {
		length = clamp(length, 0, n-start)
		return value.String(string(runes[start : start+length])), nil
	}

	return value.String(string(runes[start:])), nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Prepend concatenates a prefix before the raw text of v.
// Param: "prefix" | {prepend: "prefix"}.
func Prepend(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	return value.String(param.PrimaryString("", "prepend") + value.RawText(v)), nil
}

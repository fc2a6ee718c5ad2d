package numfmt

import (
	"strings"

	"gopkg.in/inf.v0"
)

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokIntDigit
	tokFracDigit
	tokPoint
	tokExponent
)

type token struct {
	kind tokenKind
	text string
	zero bool
}

type exponentSpec struct {
	upper     bool
	alwaysPos bool
	minDigits int
}

// section is one ';'-separated part of a custom pattern.
type section struct {
	raw       string
	tokens    []token
	intDigits int
	minInt    int
	minFrac   int
	maxFrac   int
	grouping  bool
	scaleDiv  int
	shift     int
	exp       *exponentSpec
}

func formatCustom(d *inf.Dec, pattern string, c Culture) string {
	parts := splitSections(pattern)
	sections := make([]*section, len(parts))
	for i, part := range parts {
		sections[i] = parseSection(part)
	}

	sign := d.Sign()
	switch {
	case sign == 0 && len(sections) >= 3:
		return sections[2].render(d, false, c)
	case sign < 0 && len(sections) >= 2 && sections[1].raw != "":
		return sections[1].render(new(inf.Dec).Abs(d), false, c)
	default:
		return sections[0].render(d, true, c)
	}
}

// splitSections splits on ';' outside quotes and escapes.
func splitSections(pattern string) []string {
	var parts []string
	var cur strings.Builder
	var quote rune
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\\':
			escaped = true
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	return append(parts, cur.String())
}

//nolint:gocyclo // pattern grammar
func parseSection(raw string) *section {
	s := &section{raw: raw}
	runes := []rune(raw)
	seenPoint := false
	pendingCommas := 0
	firstZero := -1

	flushScaling := func() {
		if pendingCommas > 0 && s.intDigits > 0 {
			s.scaleDiv += pendingCommas
		}
		pendingCommas = 0
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' || r == '"':
			end := i + 1
			for end < len(runes) && runes[end] != r {
				end++
			}
			s.literal(string(runes[i+1 : min(end, len(runes))]))
			i = end

		case r == '\\':
			if i+1 < len(runes) {
				i++
				s.literal(string(runes[i]))
			}

		case (r == '0' || r == '#') && s.exp == nil:
			if seenPoint {
				s.maxFrac++
				if r == '0' {
					s.minFrac = s.maxFrac
				}
				s.tokens = append(s.tokens, token{kind: tokFracDigit, zero: r == '0'})
				continue
			}
			if pendingCommas > 0 && s.intDigits > 0 {
				s.grouping = true
			}
			pendingCommas = 0
			if r == '0' && firstZero < 0 {
				firstZero = s.intDigits
			}
			s.intDigits++
			s.tokens = append(s.tokens, token{kind: tokIntDigit, zero: r == '0'})

		case r == ',' && !seenPoint && s.exp == nil:
			pendingCommas++

		case r == ',':

		case r == '.' && !seenPoint && s.exp == nil:
			flushScaling()
			seenPoint = true
			s.tokens = append(s.tokens, token{kind: tokPoint})

		case r == '.':

		case r == '%':
			s.shift += 2
			s.literal("%")

		case r == '‰':
			s.shift += 3
			s.literal("‰")

		case (r == 'E' || r == 'e') && s.exp == nil:
			spec, consumed := parseExponent(runes[i:])
			if spec == nil {
				s.literal(string(r))
				continue
			}
			if !seenPoint {
				flushScaling()
			}
			s.exp = spec
			s.tokens = append(s.tokens, token{kind: tokExponent})
			i += consumed - 1

		default:
			s.literal(string(r))
		}
	}
	if !seenPoint {
		flushScaling()
	}

	if firstZero >= 0 {
		s.minInt = s.intDigits - firstZero
	}
	return s
}

// parseExponent recognizes E0, E+0, E-0 (any number of zeros).
func parseExponent(runes []rune) (*exponentSpec, int) {
	spec := &exponentSpec{upper: runes[0] == 'E'}
	i := 1
	if i < len(runes) && (runes[i] == '+' || runes[i] == '-') {
		spec.alwaysPos = runes[i] == '+'
		i++
	}
	start := i
	for i < len(runes) && runes[i] == '0' {
		i++
	}
	if i == start {
		return nil, 0
	}
	spec.minDigits = i - start
	return spec, i
}

func (s *section) literal(text string) {
	if n := len(s.tokens); n > 0 && s.tokens[n-1].kind == tokLiteral {
		s.tokens[n-1].text += text
		return
	}
	s.tokens = append(s.tokens, token{kind: tokLiteral, text: text})
}

//nolint:gocyclo // digit placement
func (s *section) render(d *inf.Dec, withSign bool, c Culture) string {
	v := shift(d, s.shift-3*s.scaleDiv)

	var neg bool
	var ip, fp string
	var exp int
	if s.exp != nil {
		neg, ip, fp, exp = scientific(v, max(s.intDigits, 1), s.maxFrac)
	} else {
		neg, ip, fp = splitDec(roundDec(v, s.maxFrac))
	}

	for len(fp) > s.minFrac && strings.HasSuffix(fp, "0") {
		fp = fp[:len(fp)-1]
	}
	if ip == "0" {
		ip = ""
	}
	if pad := s.minInt - len(ip); pad > 0 {
		ip = strings.Repeat("0", pad) + ip
	}

	var sb strings.Builder
	if withSign && neg && strings.Trim(ip+fp, "0") != "" {
		sb.WriteString(c.NegativeSign)
	}

	intIndex, fracIndex := 0, 0
	for _, tok := range s.tokens {
		switch tok.kind {
		case tokLiteral:
			sb.WriteString(tok.text)

		case tokIntDigit:
			if s.grouping {
				if intIndex == 0 {
					sb.WriteString(group(ip, c.GroupSeparator))
				}
				intIndex++
				continue
			}
			offset := len(ip) - s.intDigits
			if intIndex == 0 && offset > 0 {
				sb.WriteString(ip[:offset])
			}
			if at := offset + intIndex; at >= 0 {
				sb.WriteByte(ip[at])
			}
			intIndex++

		case tokPoint:
			if s.intDigits == 0 {
				sb.WriteString(ip)
			}
			if fp != "" {
				sb.WriteString(c.DecimalSeparator)
			}

		case tokFracDigit:
			if fracIndex < len(fp) {
				sb.WriteByte(fp[fracIndex])
			}
			fracIndex++

		case tokExponent:
			sb.WriteString(exponentText(exp, s.exp.upper, s.exp.alwaysPos, s.exp.minDigits))
		}
	}
	return sb.String()
}

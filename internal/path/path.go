// Package path resolves dotted/bracketed paths against a value.Value tree.
//
// A path is a sequence of names separated by dots, where each name may carry
// bracketed suffixes:
//
//	user.name
//	items[0].id
//	matrix[1][2]
//	headers['content-type']
//	data["a.b"].value
//
// Bracket content is either an array index or an object key, written with or
// without quotes. Quoted keys may contain dots and closing brackets.
package path

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath indicates that a path string could not be parsed.
var ErrInvalidPath = errors.New("invalid path")

// Path is a parsed path. The zero Path addresses the root.
type Path struct {
	raw      string
	segments []string
}

// Parse parses a path string into its segments.
func Parse(raw string) (Path, error) {
	p := &pathParser{path: raw}
	segments, err := p.parse()
	if err != nil {
		return Path{}, err
	}
	return Path{raw: raw, segments: segments}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original path text.
func (p Path) String() string {
	return p.raw
}

// Segments returns a copy of the parsed segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// IsRoot reports whether the path addresses the root value.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// pathParser splits a path into segments.
// Examples:
//   - "name" -> ["name"]
//   - "user.name" -> ["user", "name"]
//   - "items[0].id" -> ["items", "0", "id"]
//   - "a['x.y']" -> ["a", "x.y"]
type pathParser struct {
	path     string
	pos      int
	segments []string
	current  strings.Builder
}

func (p *pathParser) parse() ([]string, error) {
	for p.pos < len(p.path) {
		ch := p.path[p.pos]
		switch ch {
		case '.':
			p.flush()
			p.pos++
		case '[':
			p.flush()
			if err := p.readBracket(); err != nil {
				return nil, err
			}
		case ']':
			return nil, fmt.Errorf("%w: unexpected ']' at offset %d in %q", ErrInvalidPath, p.pos, p.path)
		default:
			p.current.WriteByte(ch)
			p.pos++
		}
	}
	p.flush()
	return p.segments, nil
}

// flush ends the current dotted name. Empty names (from "a..b" or a
// leading dot) are dropped.
func (p *pathParser) flush() {
	if p.current.Len() > 0 {
		p.segments = append(p.segments, p.current.String())
		p.current.Reset()
	}
}

// readBracket consumes "[...]" starting at the opening bracket.
func (p *pathParser) readBracket() error {
	start := p.pos
	p.pos++ // '['

	if p.pos < len(p.path) && (p.path[p.pos] == '\'' || p.path[p.pos] == '"') {
		key, err := p.readQuoted(p.path[p.pos])
		if err != nil {
			return err
		}
		if p.pos >= len(p.path) || p.path[p.pos] != ']' {
			return fmt.Errorf("%w: expected ']' after quoted key at offset %d in %q", ErrInvalidPath, start, p.path)
		}
		p.pos++
		p.segments = append(p.segments, key)
		return nil
	}

	end := strings.IndexByte(p.path[p.pos:], ']')
	if end < 0 {
		return fmt.Errorf("%w: unclosed '[' at offset %d in %q", ErrInvalidPath, start, p.path)
	}
	key := strings.TrimSpace(p.path[p.pos : p.pos+end])
	if key == "" {
		return fmt.Errorf("%w: empty brackets at offset %d in %q", ErrInvalidPath, start, p.path)
	}
	p.segments = append(p.segments, key)
	p.pos += end + 1
	return nil
}

// readQuoted reads a quoted key; a backslash escapes the next byte.
func (p *pathParser) readQuoted(quote byte) (string, error) {
	start := p.pos
	p.pos++ // opening quote

	var sb strings.Builder
	for p.pos < len(p.path) {
		ch := p.path[p.pos]
		switch {
		case ch == '\\' && p.pos+1 < len(p.path):
			sb.WriteByte(p.path[p.pos+1])
			p.pos += 2
		case ch == quote:
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(ch)
			p.pos++
		}
	}
	return "", fmt.Errorf("%w: unterminated quote at offset %d in %q", ErrInvalidPath, start, p.path)
}

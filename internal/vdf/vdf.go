// Package vdf reads and writes Valve's KeyValues text format, the
// configuration format used by the Steam client (loginusers.vdf,
// registry.vdf, appmanifest_*.acf).
//
// A document is an ordered mapping from string keys to values, where each
// value is either a leaf string or a nested mapping. Parsing preserves key
// order and serialization is deterministic, so editing one leaf and
// re-serializing leaves every untouched sibling byte-identical. That matters
// because the files this package touches are shared with the Steam client
// itself.
//
// Key lookup is case-insensitive, matching the client's own KeyValues
// behavior (the same file may spell a field "MostRecent" or "mostrecent"
// depending on the Steam version that wrote it). The stored spelling is
// preserved on write.
package vdf

import (
	"bytes"
	"fmt"
	"strings"
)

// Value is either a leaf string or a nested Object.
type Value struct {
	str string
	obj *Object
}

// String returns a leaf value.
func String(s string) Value { return Value{str: s} }

// Nested returns an object value.
func Nested(o *Object) Value { return Value{obj: o} }

// IsObject reports whether the value is a nested mapping.
func (v Value) IsObject() bool { return v.obj != nil }

// Leaf returns the leaf string, or "" when the value is an object.
func (v Value) Leaf() string { return v.str }

// Object returns the nested mapping, or nil when the value is a leaf.
func (v Value) Object() *Object { return v.obj }

type pair struct {
	key   string
	value Value
}

// Object is an ordered key/value mapping.
type Object struct {
	pairs []pair
}

// NewObject returns an empty mapping.
func NewObject() *Object { return &Object{} }

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.pairs) }

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.pairs))
	for _, p := range o.pairs {
		keys = append(keys, p.key)
	}
	return keys
}

// Get returns the value stored under key. Lookup is case-insensitive; when
// the document contains duplicate keys the first match wins.
func (o *Object) Get(key string) (Value, bool) {
	for _, p := range o.pairs {
		if strings.EqualFold(p.key, key) {
			return p.value, true
		}
	}
	return Value{}, false
}

// Set stores value under key, replacing the first case-insensitive match in
// place (keeping its position and spelling) or appending a new entry.
func (o *Object) Set(key string, value Value) {
	for i, p := range o.pairs {
		if strings.EqualFold(p.key, key) {
			o.pairs[i].value = value
			return
		}
	}
	o.pairs = append(o.pairs, pair{key: key, value: value})
}

// Delete removes the first case-insensitive match and reports whether an
// entry was removed.
func (o *Object) Delete(key string) bool {
	for i, p := range o.pairs {
		if strings.EqualFold(p.key, key) {
			o.pairs = append(o.pairs[:i], o.pairs[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup walks a key path through nested objects.
func (o *Object) Lookup(path ...string) (Value, bool) {
	if len(path) == 0 {
		return Value{}, false
	}

	current := o
	for i, key := range path {
		value, ok := current.Get(key)
		if !ok {
			return Value{}, false
		}
		if i == len(path)-1 {
			return value, true
		}
		if !value.IsObject() {
			return Value{}, false
		}
		current = value.Object()
	}

	return Value{}, false
}

// Leaf returns the leaf string at path, and whether a leaf exists there.
func (o *Object) Leaf(path ...string) (string, bool) {
	value, ok := o.Lookup(path...)
	if !ok || value.IsObject() {
		return "", false
	}
	return value.Leaf(), true
}

// SetLeaf stores a leaf string at path, creating intermediate objects as
// needed. Only the targeted entry is replaced; siblings along the path keep
// their positions and bytes.
func (o *Object) SetLeaf(value string, path ...string) {
	if len(path) == 0 {
		return
	}

	current := o
	for _, key := range path[:len(path)-1] {
		next, ok := current.Get(key)
		if !ok || !next.IsObject() {
			child := NewObject()
			current.Set(key, Nested(child))
			current = child
			continue
		}
		current = next.Object()
	}

	current.Set(path[len(path)-1], String(value))
}

// SyntaxError describes malformed KeyValues input.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("vdf: line %d: %s", e.Line, e.Msg)
}

// Parse decodes KeyValues text into an ordered mapping. It returns a
// *SyntaxError for unbalanced braces, missing values, or unterminated
// quoted strings.
func Parse(data []byte) (*Object, error) {
	s := &scanner{data: trimBOM(data), line: 1}

	root, err := s.parseObject(true)
	if err != nil {
		return nil, err
	}

	return root, nil
}

// Marshal encodes the mapping in the layout Steam itself writes: quoted
// keys and values separated by two tabs, braces on their own lines, one tab
// of indentation per nesting level.
func (o *Object) Marshal() []byte {
	var buf bytes.Buffer
	writeObject(&buf, o, 0)
	return buf.Bytes()
}

func writeObject(buf *bytes.Buffer, o *Object, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, p := range o.pairs {
		if p.value.IsObject() {
			buf.WriteString(indent)
			writeQuoted(buf, p.key)
			buf.WriteByte('\n')
			buf.WriteString(indent)
			buf.WriteString("{\n")
			writeObject(buf, p.value.Object(), depth+1)
			buf.WriteString(indent)
			buf.WriteString("}\n")
			continue
		}

		buf.WriteString(indent)
		writeQuoted(buf, p.key)
		buf.WriteString("\t\t")
		writeQuoted(buf, p.value.Leaf())
		buf.WriteByte('\n')
	}
}

func writeQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			buf.WriteString(`\\`)
		case '"':
			buf.WriteString(`\"`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}

func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

type scanner struct {
	data []byte
	pos  int
	line int
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenString
	tokenOpenBrace
	tokenCloseBrace
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (s *scanner) errorf(format string, args ...any) error {
	return &SyntaxError{Line: s.line, Msg: fmt.Sprintf(format, args...)}
}

// parseObject reads key/value pairs until EOF (top level) or a closing
// brace (nested level).
func (s *scanner) parseObject(top bool) (*Object, error) {
	obj := NewObject()

	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokenEOF:
			if !top {
				return nil, s.errorf("unclosed object")
			}
			return obj, nil
		case tokenCloseBrace:
			if top {
				return nil, &SyntaxError{Line: tok.line, Msg: "unexpected '}'"}
			}
			return obj, nil
		case tokenOpenBrace:
			return nil, &SyntaxError{Line: tok.line, Msg: "unexpected '{'"}
		}

		key := tok.text

		value, err := s.next()
		if err != nil {
			return nil, err
		}

		switch value.kind {
		case tokenString:
			obj.pairs = append(obj.pairs, pair{key: key, value: String(value.text)})
		case tokenOpenBrace:
			child, err := s.parseObject(false)
			if err != nil {
				return nil, err
			}
			obj.pairs = append(obj.pairs, pair{key: key, value: Nested(child)})
		case tokenCloseBrace:
			return nil, &SyntaxError{Line: value.line, Msg: fmt.Sprintf("key %q has no value", key)}
		case tokenEOF:
			return nil, &SyntaxError{Line: value.line, Msg: fmt.Sprintf("key %q has no value", key)}
		}
	}
}

func (s *scanner) next() (token, error) {
	s.skipSpaceAndComments()

	if s.pos >= len(s.data) {
		return token{kind: tokenEOF, line: s.line}, nil
	}

	switch c := s.data[s.pos]; c {
	case '{':
		s.pos++
		return token{kind: tokenOpenBrace, line: s.line}, nil
	case '}':
		s.pos++
		return token{kind: tokenCloseBrace, line: s.line}, nil
	case '"':
		return s.quotedString()
	default:
		return s.bareString()
	}
}

func (s *scanner) skipSpaceAndComments() {
	for s.pos < len(s.data) {
		switch c := s.data[s.pos]; {
		case c == '\n':
			s.line++
			s.pos++
		case c == ' ' || c == '\t' || c == '\r':
			s.pos++
		case c == '/' && s.pos+1 < len(s.data) && s.data[s.pos+1] == '/':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *scanner) quotedString() (token, error) {
	start := s.line
	s.pos++ // opening quote

	var b strings.Builder
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch c {
		case '"':
			s.pos++
			return token{kind: tokenString, text: b.String(), line: start}, nil
		case '\\':
			if s.pos+1 >= len(s.data) {
				return token{}, &SyntaxError{Line: start, Msg: "unterminated string"}
			}
			s.pos++
			switch esc := s.data[s.pos]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"':
				b.WriteByte(esc)
			default:
				// Unknown escapes pass through verbatim, as the client does.
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
			s.pos++
		case '\n':
			return token{}, &SyntaxError{Line: start, Msg: "unterminated string"}
		default:
			b.WriteByte(c)
			s.pos++
		}
	}

	return token{}, &SyntaxError{Line: start, Msg: "unterminated string"}
}

func (s *scanner) bareString() (token, error) {
	start := s.pos
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '{' || c == '}' || c == '"' {
			break
		}
		s.pos++
	}

	return token{kind: tokenString, text: string(s.data[start:s.pos]), line: s.line}, nil
}

// Package emitter serializes a value.Value tree back to canonical PXD
// text, the inverse of internal/lexer + internal/parser up to a small set
// of canonicalizations: single-space separators, a forced real fractional
// part, uppercase hex, and a trailing newline.
//
// It builds output with small recursive writer methods over a
// strings.Builder; gzip compression, where used, lives only in the root
// pxd package's ReadFile/WriteFile, not here.
package emitter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SimonWaldherr/pxd/internal/lexer"
	"github.com/SimonWaldherr/pxd/internal/value"
)

// DefaultIndent is used whenever a caller's requested indent is outside
// 0..9.
const DefaultIndent = 2

// Version is the header version string this emitter writes.
const Version = "1.0"

// Emitter writes a value.Doc as canonical PXD text.
type Emitter struct {
	indentUnit string
	buf        strings.Builder
}

// New creates an Emitter with the given per-level indent width, clamped to
// DefaultIndent when outside 0..9.
func New(indent int) *Emitter {
	if indent < 0 || indent > 9 {
		indent = DefaultIndent
	}
	return &Emitter{indentUnit: strings.Repeat(" ", indent)}
}

// Write renders doc to w.
func Write(w io.Writer, doc value.Doc, indent int) error {
	e := New(indent)
	e.writeHeader(doc.Custom)
	if err := e.writeValue(doc.Root, 0); err != nil {
		return err
	}
	e.buf.WriteString("\n")
	_, err := io.WriteString(w, e.buf.String())
	return err
}

func (e *Emitter) pad(depth int) string {
	return strings.Repeat(e.indentUnit, depth)
}

func (e *Emitter) writeHeader(custom string) {
	e.buf.WriteString("pxd ")
	e.buf.WriteString(Version)
	if custom != "" {
		e.buf.WriteByte(' ')
		e.buf.WriteString(custom)
	}
	e.buf.WriteByte('\n')
}

// writeValue renders v inline at the current cursor position (no leading
// indent of its own) and recurses at depth for any nested containers.
func (e *Emitter) writeValue(v value.Value, depth int) error {
	switch v.Kind() {
	case value.KindNull:
		e.buf.WriteString("null")
	case value.KindBool:
		if v.AsBool() {
			e.buf.WriteString("yes")
		} else {
			e.buf.WriteString("no")
		}
	case value.KindInt:
		e.buf.WriteString(strconv.FormatInt(v.AsInt(), 10))
	case value.KindReal:
		e.buf.WriteString(formatReal(v.AsReal()))
	case value.KindDate:
		e.buf.WriteString(v.AsTime().Format("2006-01-02"))
	case value.KindDateTime:
		e.buf.WriteString(v.AsTime().Format("2006-01-02T15:04:05"))
		if v.Zulu() {
			e.buf.WriteByte('Z')
		}
	case value.KindStr:
		e.buf.WriteByte('<')
		e.buf.WriteString(lexer.EscapeXML(v.AsStr()))
		e.buf.WriteByte('>')
	case value.KindBytes:
		e.buf.WriteByte('(')
		e.buf.WriteString(lexer.EncodeHex(v.AsBytes()))
		e.buf.WriteByte(')')
	case value.KindList:
		return e.writeList(v.AsList(), depth)
	case value.KindDict:
		return e.writeDict(v.AsDict(), depth)
	case value.KindTable:
		return e.writeTable(v.AsTable(), depth)
	default:
		return fmt.Errorf("emit: cannot represent value of kind %s", v.Kind())
	}
	return nil
}

func (e *Emitter) writeList(list []value.Value, depth int) error {
	e.buf.WriteString("[\n")
	for _, el := range list {
		e.buf.WriteString(e.pad(depth + 1))
		if err := e.writeValue(el, depth+1); err != nil {
			return err
		}
		e.buf.WriteByte('\n')
	}
	e.buf.WriteString(e.pad(depth))
	e.buf.WriteString("]")
	return nil
}

func (e *Emitter) writeDict(d *value.Dict, depth int) error {
	e.buf.WriteString("{\n")
	keys, vals := d.Keys(), d.Values()
	for i := range keys {
		e.buf.WriteString(e.pad(depth + 1))
		if err := e.writeValue(keys[i], depth+1); err != nil {
			return err
		}
		e.buf.WriteByte(' ')
		if err := e.writeValue(vals[i], depth+1); err != nil {
			return err
		}
		e.buf.WriteByte('\n')
	}
	e.buf.WriteString(e.pad(depth))
	e.buf.WriteString("}")
	return nil
}

func (e *Emitter) writeTable(t *value.Table, depth int) error {
	e.buf.WriteString("[= <")
	e.buf.WriteString(lexer.EscapeXML(t.Name()))
	e.buf.WriteByte('>')
	for _, f := range t.Fields() {
		e.buf.WriteString(" <")
		e.buf.WriteString(lexer.EscapeXML(f))
		e.buf.WriteByte('>')
	}
	e.buf.WriteString(" =\n")
	for _, row := range t.Rows() {
		e.buf.WriteString(e.pad(depth + 1))
		for i, cell := range row {
			if i > 0 {
				e.buf.WriteByte(' ')
			}
			if err := e.writeValue(cell, depth+1); err != nil {
				return err
			}
		}
		e.buf.WriteByte('\n')
	}
	e.buf.WriteString(e.pad(depth))
	e.buf.WriteString("=]")
	return nil
}

// formatReal renders a float64 so it always carries a fractional part or
// an exponent: 1 becomes "1.0", 1e9 becomes "1.0e+09".
func formatReal(r float64) string {
	s := strconv.FormatFloat(r, 'g', -1, 64)
	if strings.ContainsAny(s, ".eE") {
		if i := strings.IndexAny(s, "eE"); i >= 0 && !strings.Contains(s[:i], ".") {
			return s[:i] + ".0" + s[i:]
		}
		return s
	}
	return s + ".0"
}

// Package pxd provides a reader/writer for the PXD plain-text typed data
// format: a compact alternative to CSV/INI/JSON/TOML/YAML with richer
// scalar types (bytes, dates, datetimes) and a dedicated Table encoding for
// homogeneous row sets.
//
// This root package re-exports the internal value model and wires the
// lexer, parser, and emitter behind a small functional-options API.
//
// # Basic usage
//
//	root, custom, err := pxd.Read(strings.NewReader("pxd 1.0\n[ 1 2 3 ]\n"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = pxd.Write(os.Stdout, root, custom)
package pxd

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"

	"github.com/SimonWaldherr/pxd/internal/diag"
	"github.com/SimonWaldherr/pxd/internal/emitter"
	"github.com/SimonWaldherr/pxd/internal/parser"
	"github.com/SimonWaldherr/pxd/internal/value"
)

// Re-exported core types, so callers never need to import internal/value
// directly.
type (
	// Value is a single typed PXD value: Null, Bool, Int, Real, Date,
	// DateTime, Str, Bytes, List, Dict, or Table.
	Value = value.Value
	// Kind discriminates the variant held by a Value.
	Kind = value.Kind
	// Dict is an insertion-ordered key->Value mapping.
	Dict = value.Dict
	// Table is a named, field-named, row-oriented container of scalar
	// values.
	Table = value.Table
	// Row is one Table record with field-named access.
	Row = value.Row
)

// Kind constants, re-exported for callers that branch on Value.Kind().
const (
	KindNull     = value.KindNull
	KindBool     = value.KindBool
	KindInt      = value.KindInt
	KindReal     = value.KindReal
	KindDate     = value.KindDate
	KindDateTime = value.KindDateTime
	KindStr      = value.KindStr
	KindBytes    = value.KindBytes
	KindList     = value.KindList
	KindDict     = value.KindDict
	KindTable    = value.KindTable
)

// Value constructors, re-exported from internal/value.
var (
	NewNull     = value.NewNull
	NewBool     = value.NewBool
	NewInt      = value.NewInt
	NewReal     = value.NewReal
	NewDate     = value.NewDate
	NewDateTime = value.NewDateTime
	NewStr      = value.NewStr
	NewBytes    = value.NewBytes
	NewList     = value.NewList
	// NewDict allocates an empty Dict to populate with Set before wrapping
	// it into a Value with DictValue.
	NewDict = value.NewDict
	// DictValue wraps an already-built Dict as a Value.
	DictValue = value.DictValue
	// NewTable allocates a Table with the given name to populate with
	// AppendFieldName/Append before wrapping it into a Value with
	// TableValue.
	NewTable = value.NewTable
	// TableValue wraps an already-built Table as a Value.
	TableValue = value.TableValue
)

// Error is the diagnostic type returned for header, lex, parse, table, or
// depth errors. Callers may type-assert to inspect Kind.
type Error = diag.Error

// ErrorKind enumerates the category of a PXD Error.
type ErrorKind = diag.Kind

// Error kind constants, re-exported from internal/diag.
const (
	HeaderMissing      = diag.HeaderMissing
	HeaderInvalid      = diag.HeaderInvalid
	NotPxd             = diag.NotPxd
	VersionUnsupported = diag.VersionUnsupported
	Lex                = diag.Lex
	Parse              = diag.Parse
	TableInvariant     = diag.TableInvariant
	DepthExceeded      = diag.DepthExceeded
	EmitInvalid        = diag.EmitInvalid
)

// config holds the resolved set of Options for one Read or Write call.
type config struct {
	warnAsError bool
	indent      int
	depthLimit  int
	verbose     bool
}

// Option configures a Read or Write call via the functional-options
// pattern.
type Option func(*config)

// WithWarnAsError escalates version-mismatch warnings (and any other
// diagnostic warning) to a fatal error.
func WithWarnAsError(on bool) Option {
	return func(c *config) { c.warnAsError = on }
}

// WithIndent sets the emitter's per-level indent width. Values outside
// 0..9 fall back to the emitter's default of 2.
func WithIndent(n int) Option {
	return func(c *config) { c.indent = n }
}

// WithDepthLimit overrides the parser's container nesting cap. n <= 0
// restores the default of parser.DefaultDepthLimit.
func WithDepthLimit(n int) Option {
	return func(c *config) { c.depthLimit = n }
}

// WithVerbose turns on diag.Session correlation-ID logging for a Read,
// Unmarshal, or ReadFile call, the library-level counterpart of the CLI's
// -v/--verbose flag. Write, Marshal, and WriteFile ignore it.
func WithVerbose(on bool) Option {
	return func(c *config) { c.verbose = on }
}

func resolve(opts []Option) *config {
	c := &config{indent: emitter.DefaultIndent}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Read parses a complete PXD document from r and returns its root Value
// plus the header's custom string.
func Read(r io.Reader, opts ...Option) (Value, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, "", err
	}
	return Unmarshal(data, opts...)
}

// Unmarshal parses a complete PXD document already held in memory.
func Unmarshal(data []byte, opts ...Option) (Value, string, error) {
	c := resolve(opts)
	sess := diag.NewSession(c.warnAsError)
	sess.Verbose = c.verbose
	doc, err := parser.Parse(string(data), sess, c.depthLimit)
	if err != nil {
		return Value{}, "", err
	}
	sess.Logf("parsed %d bytes, root %s", len(data), doc.Root.Kind())
	return doc.Root, doc.Custom, nil
}

// ReadFile reads and parses the PXD document at path, transparently
// decompressing it if it is gzip-compressed (detected by the standard
// 0x1F 0x8B magic bytes).
func ReadFile(path string, opts ...Option) (Value, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return Value{}, "", err
	}
	defer f.Close()
	return Read(maybeGzip(f), opts...)
}

// maybeGzip transparently decompresses r if it begins with the gzip magic
// bytes, otherwise it returns r unchanged. Gzip layering is a file-helper
// concern, so it lives only here, never in internal/lexer.
func maybeGzip(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(2)
	if len(magic) >= 2 && magic[0] == 0x1F && magic[1] == 0x8B {
		if gr, err := gzip.NewReader(br); err == nil {
			return gr
		}
	}
	return br
}

// Write renders v as canonical PXD text to w, tagging the header with the
// given custom string (pass "" for none).
func Write(w io.Writer, v Value, custom string, opts ...Option) error {
	c := resolve(opts)
	doc := value.Doc{Custom: custom, Root: v}
	return emitter.Write(w, doc, c.indent)
}

// Marshal renders v as canonical PXD text and returns the resulting bytes.
func Marshal(v Value, custom string, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, v, custom, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders v as canonical PXD text to the file at path, gzip
// compressing it first when compress is true.
func WriteFile(path string, v Value, custom string, compress bool, opts ...Option) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !compress {
		return Write(f, v, custom, opts...)
	}
	gw := gzip.NewWriter(f)
	if err := Write(gw, v, custom, opts...); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

// Package lexer tokenizes PXD source text.
//
// It turns complete UTF-8 text into a linear token stream plus the
// header's custom string. A single-pass scanner walks the byte-indexed
// source, tracking table-header mode so a bare "<...>" can be classified
// as a table name, a field name, or an ordinary string depending on what
// came before it.
//
// PXD blends fixed delimiters with escaped-string slices, hex blobs, and
// ambiguous number/date runs; keeping that entirely in the lexer keeps
// the parser a plain token consumer.
package lexer

import "time"

// Kind identifies what a Token represents.
type Kind int

const (
	TableBegin Kind = iota
	TableName
	TableFieldName
	TableRows
	TableEnd
	ListBegin
	ListEnd
	DictBegin
	DictEnd
	NullTok
	BoolTok
	IntTok
	RealTok
	DateTok
	DateTimeTok
	StrTok
	BytesTok
	Eof
)

var kindNames = [...]string{
	"TableBegin", "TableName", "TableFieldName", "TableRows", "TableEnd",
	"ListBegin", "ListEnd", "DictBegin", "DictEnd",
	"Null", "Bool", "Int", "Real", "Date", "DateTime", "Str", "Bytes", "Eof",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Token is one lexical unit, tagged with the byte offset where it began
// so diagnostics can derive a source line from it later.
type Token struct {
	Kind   Kind
	Offset int

	BoolVal bool
	IntVal  int64
	RealVal float64
	TimeVal time.Time
	Zulu    bool
	StrVal  string
	Bytes   []byte
}

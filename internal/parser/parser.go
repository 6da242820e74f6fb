// Package parser assembles a lexer.Token stream into a single root
// value.Value via an explicit state stack.
//
// The PXD grammar's List/Dict/Table nesting is driven by a stack of open
// containers and a parallel stack of what each expects next, rather than
// by recursive descent: a List can hold another List, a Dict, or a Table
// to unbounded depth, and a flat stack machine makes both the depth cap
// and "what token is legal right now" a single table lookup instead of
// logic scattered across mutually recursive parse functions.
package parser

import (
	"github.com/SimonWaldherr/pxd/internal/diag"
	"github.com/SimonWaldherr/pxd/internal/lexer"
	"github.com/SimonWaldherr/pxd/internal/value"
)

// DefaultDepthLimit caps container nesting depth so pathological input
// cannot blow the stack.
const DefaultDepthLimit = 1024

// pstate is what the parser expects next within the frame on top of the
// stack.
type pstate int

const (
	stAnyValue pstate = iota
	stDictKey
	stDictValue
	stTableName
	stTableFieldName
	stTableValue
)

type frame struct {
	kind  value.Kind // List, Dict, or Table
	state pstate

	list       []value.Value
	dict       *value.Dict
	tbl        *value.Table
	pendingKey value.Value
	sawField   bool
}

// Parser drives the PXD state machine over a Lexer's token stream.
type Parser struct {
	lx         *lexer.Lexer
	sess       *diag.Session
	depthLimit int
	stack      []*frame
}

// New creates a Parser over an already-scanned Lexer.
func New(lx *lexer.Lexer, sess *diag.Session, depthLimit int) *Parser {
	if depthLimit <= 0 {
		depthLimit = DefaultDepthLimit
	}
	return &Parser{lx: lx, sess: sess, depthLimit: depthLimit}
}

// Parse reads tokens from text and returns the single root Value plus the
// header's custom string.
func Parse(text string, sess *diag.Session, depthLimit int) (value.Doc, error) {
	lx, err := lexer.New(text, sess)
	if err != nil {
		return value.Doc{}, err
	}
	p := New(lx, sess, depthLimit)
	root, err := p.parse()
	if err != nil {
		return value.Doc{}, err
	}
	return value.Doc{Custom: lx.Custom(), Root: root}, nil
}

func (p *Parser) errf(offset int, format string, a ...any) error {
	return diag.Errf(diag.Parse, p.lx.Line(offset), format, a...)
}

func (p *Parser) parse() (value.Value, error) {
	tok, err := p.lx.Next()
	if err != nil {
		return value.Value{}, err
	}
	if err := p.openContainer(tok); err != nil {
		return value.Value{}, err
	}

	var root value.Value
	for {
		tok, err := p.lx.Next()
		if err != nil {
			return value.Value{}, err
		}
		if len(p.stack) == 0 {
			// The root container has already closed; the only legal
			// token left is Eof.
			if tok.Kind != lexer.Eof {
				return value.Value{}, p.errf(tok.Offset, "unexpected content after the document's root value")
			}
			return root, nil
		}
		if tok.Kind == lexer.Eof {
			return value.Value{}, p.errf(tok.Offset, "unterminated %s at end of file", p.top().kind)
		}
		val, closedRoot, err := p.step(tok)
		if err != nil {
			return value.Value{}, err
		}
		if closedRoot {
			root = val
		}
	}
}

// openContainer handles the very first token, which must open a List,
// Dict, or Table: the document root can only ever be a container.
func (p *Parser) openContainer(tok lexer.Token) error {
	switch tok.Kind {
	case lexer.ListBegin:
		return p.push(&frame{kind: value.KindList, state: stAnyValue})
	case lexer.DictBegin:
		return p.push(&frame{kind: value.KindDict, state: stDictKey, dict: value.NewDict()})
	case lexer.TableBegin:
		return p.push(&frame{kind: value.KindTable, state: stTableName, tbl: value.NewTable("")})
	default:
		return p.errf(tok.Offset, "document must begin with a list, dict, or table")
	}
}

func (p *Parser) top() *frame { return p.stack[len(p.stack)-1] }

func (p *Parser) push(f *frame) error {
	if len(p.stack) >= p.depthLimit {
		return diag.Errf(diag.DepthExceeded, 0, "container nesting exceeds the limit of %d", p.depthLimit)
	}
	p.stack = append(p.stack, f)
	return nil
}

// step processes one token against the current top frame. It returns the
// completed root value (and closedRoot=true) once the outermost container
// is popped.
func (p *Parser) step(tok lexer.Token) (value.Value, bool, error) {
	f := p.top()
	switch f.state {
	case stAnyValue:
		return p.stepAnyValue(f, tok)
	case stDictKey:
		return p.stepDictKey(f, tok)
	case stDictValue:
		return p.stepDictValue(f, tok)
	case stTableName:
		return p.stepTableName(f, tok)
	case stTableFieldName:
		return p.stepTableFieldName(f, tok)
	case stTableValue:
		return p.stepTableValue(f, tok)
	default:
		return value.Value{}, false, p.errf(tok.Offset, "internal error: unknown parser state")
	}
}

func scalarOf(tok lexer.Token) (value.Value, bool) {
	switch tok.Kind {
	case lexer.NullTok:
		return value.NewNull(), true
	case lexer.BoolTok:
		return value.NewBool(tok.BoolVal), true
	case lexer.IntTok:
		return value.NewInt(tok.IntVal), true
	case lexer.RealTok:
		return value.NewReal(tok.RealVal), true
	case lexer.DateTok:
		return value.NewDate(tok.TimeVal), true
	case lexer.DateTimeTok:
		return value.NewDateTime(tok.TimeVal, tok.Zulu), true
	case lexer.StrTok:
		return value.NewStr(tok.StrVal), true
	case lexer.BytesTok:
		return value.NewBytes(tok.Bytes), true
	default:
		return value.Value{}, false
	}
}

func isContainerBegin(k lexer.Kind) bool {
	return k == lexer.ListBegin || k == lexer.DictBegin || k == lexer.TableBegin
}

func (p *Parser) stepAnyValue(f *frame, tok lexer.Token) (value.Value, bool, error) {
	if val, ok := scalarOf(tok); ok {
		f.list = append(f.list, val)
		return value.Value{}, false, nil
	}
	if isContainerBegin(tok.Kind) {
		if err := p.openContainer(tok); err != nil {
			return value.Value{}, false, err
		}
		return value.Value{}, false, nil
	}
	if tok.Kind == lexer.ListEnd {
		return p.closeFrame(f)
	}
	return value.Value{}, false, p.errf(tok.Offset, "unexpected token %s inside a list", tok.Kind)
}

func (p *Parser) stepDictKey(f *frame, tok lexer.Token) (value.Value, bool, error) {
	switch tok.Kind {
	case lexer.IntTok, lexer.DateTok, lexer.DateTimeTok, lexer.StrTok, lexer.BytesTok:
		val, _ := scalarOf(tok)
		f.pendingKey = val
		f.state = stDictValue
		return value.Value{}, false, nil
	case lexer.DictEnd:
		return p.closeFrame(f)
	default:
		return value.Value{}, false, p.errf(tok.Offset, "illegal dict key type for token %s", tok.Kind)
	}
}

func (p *Parser) stepDictValue(f *frame, tok lexer.Token) (value.Value, bool, error) {
	if val, ok := scalarOf(tok); ok {
		if err := f.dict.Set(f.pendingKey, val); err != nil {
			return value.Value{}, false, p.errf(tok.Offset, "%v", err)
		}
		f.pendingKey = value.Value{}
		f.state = stDictKey
		return value.Value{}, false, nil
	}
	if isContainerBegin(tok.Kind) {
		if err := p.openContainer(tok); err != nil {
			return value.Value{}, false, err
		}
		return value.Value{}, false, nil
	}
	return value.Value{}, false, p.errf(tok.Offset, "dict key has no matching value (got %s)", tok.Kind)
}

func (p *Parser) stepTableName(f *frame, tok lexer.Token) (value.Value, bool, error) {
	if tok.Kind != lexer.TableName {
		return value.Value{}, false, p.errf(tok.Offset, "expected a table name, got %s", tok.Kind)
	}
	f.tbl.SetName(tok.StrVal)
	f.state = stTableFieldName
	return value.Value{}, false, nil
}

func (p *Parser) stepTableFieldName(f *frame, tok lexer.Token) (value.Value, bool, error) {
	switch tok.Kind {
	case lexer.TableFieldName:
		if err := f.tbl.AppendFieldName(tok.StrVal); err != nil {
			return value.Value{}, false, p.errf(tok.Offset, "%v", err)
		}
		f.sawField = true
		return value.Value{}, false, nil
	case lexer.TableRows:
		if !f.sawField {
			return value.Value{}, false, p.errf(tok.Offset, "table %q declares no field names", f.tbl.Name())
		}
		f.state = stTableValue
		return value.Value{}, false, nil
	case lexer.TableEnd:
		if !f.sawField {
			return value.Value{}, false, p.errf(tok.Offset, "table %q declares no field names", f.tbl.Name())
		}
		return p.closeFrame(f)
	default:
		return value.Value{}, false, p.errf(tok.Offset, "unexpected token %s in table header", tok.Kind)
	}
}

func (p *Parser) stepTableValue(f *frame, tok lexer.Token) (value.Value, bool, error) {
	if val, ok := scalarOf(tok); ok {
		if err := f.tbl.Append(val); err != nil {
			return value.Value{}, false, p.errf(tok.Offset, "%v", err)
		}
		return value.Value{}, false, nil
	}
	if isContainerBegin(tok.Kind) {
		return value.Value{}, false, p.errf(tok.Offset, "nested collections are not allowed inside a table")
	}
	if tok.Kind == lexer.TableEnd {
		return p.closeFrame(f)
	}
	return value.Value{}, false, p.errf(tok.Offset, "unexpected token %s in table rows", tok.Kind)
}

// closeFrame pops the current frame, builds its Value, and either hands it
// to the enclosing frame or, if the stack is now empty, returns it as the
// completed root.
func (p *Parser) closeFrame(f *frame) (value.Value, bool, error) {
	var val value.Value
	switch f.kind {
	case value.KindList:
		val = value.NewList(f.list)
	case value.KindDict:
		val = value.DictValue(f.dict)
	case value.KindTable:
		if err := f.tbl.Finalize(); err != nil {
			return value.Value{}, false, diag.Errf(diag.TableInvariant, 0, "%v", err)
		}
		val = value.TableValue(f.tbl)
	}

	p.stack = p.stack[:len(p.stack)-1]
	if len(p.stack) == 0 {
		return val, true, nil
	}

	parent := p.top()
	switch parent.kind {
	case value.KindList:
		parent.list = append(parent.list, val)
	case value.KindDict:
		if err := parent.dict.Set(parent.pendingKey, val); err != nil {
			return value.Value{}, false, err
		}
		parent.pendingKey = value.Value{}
		parent.state = stDictKey
	}
	return value.Value{}, false, nil
}

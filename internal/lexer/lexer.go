package lexer

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/SimonWaldherr/pxd/internal/diag"
)

// SupportedVersion is the highest pxd header version this implementation
// understands without warning.
const SupportedVersion = 1.0

// ctxKind tracks, per open container, how the next "<...>" token should be
// classified. Only table headers change that classification; List and
// Dict always read "<...>" as a Str.
type ctxKind int

const (
	ctxPlain ctxKind = iota
	ctxWantTableName
	ctxWantTableField
	ctxInTableRows
)

// Lexer tokenizes PXD text one token at a time, tracking a small
// table-header mode stack so it can tell a table name, a field name, and
// an ordinary string apart.
type Lexer struct {
	text    string
	pos     int
	custom  string
	version float64
	ctx     []ctxKind
}

// New scans the mandatory header line and returns a Lexer positioned at the
// start of the body. sess receives any version-mismatch warning (escalated
// to a fatal error under warn-as-error).
func New(text string, sess *diag.Session) (*Lexer, error) {
	lx := &Lexer{text: text}
	if err := lx.scanHeader(sess); err != nil {
		return nil, err
	}
	return lx, nil
}

// Custom returns the header's free-form custom string, verbatim.
func (lx *Lexer) Custom() string { return lx.custom }

// Version returns the numeric header version.
func (lx *Lexer) Version() float64 { return lx.version }

func (lx *Lexer) scanHeader(sess *diag.Session) error {
	nl := strings.IndexByte(lx.text, '\n')
	if nl == -1 {
		return diag.Errf(diag.HeaderMissing, 1, "missing pxd file header or empty file")
	}
	line := lx.text[:nl]
	lx.pos = nl + 1

	i := 0
	skipSpace := func() {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
	}
	readWord := func() string {
		start := i
		for i < len(line) && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		return line[start:i]
	}

	skipSpace()
	word := readWord()
	if word != "pxd" {
		return diag.Errf(diag.NotPxd, 1, "not a pxd file")
	}
	skipSpace()
	if i >= len(line) {
		return diag.Errf(diag.HeaderInvalid, 1, "invalid pxd file header")
	}
	verWord := readWord()
	version, err := strconv.ParseFloat(verWord, 64)
	if err != nil {
		if werr := sess.Warnf(diag.VersionUnsupported, 1, "failed to read pxd file version number"); werr != nil {
			return werr
		}
	} else {
		lx.version = version
		if version > SupportedVersion {
			if werr := sess.Warnf(diag.VersionUnsupported, 1, "version (%v) > current (%v)", version, SupportedVersion); werr != nil {
				return werr
			}
		}
	}

	skipSpace()
	if i < len(line) {
		lx.custom = line[i:]
	}
	return nil
}

func (lx *Lexer) atEnd() bool { return lx.pos >= len(lx.text) }

func (lx *Lexer) peekByte() byte {
	if lx.atEnd() {
		return 0
	}
	return lx.text[lx.pos]
}

func (lx *Lexer) peekRune() (rune, int) {
	if lx.atEnd() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(lx.text[lx.pos:])
}

func (lx *Lexer) skipSpace() {
	for !lx.atEnd() {
		r, size := lx.peekRune()
		if !unicode.IsSpace(r) {
			return
		}
		lx.pos += size
	}
}

func (lx *Lexer) top() ctxKind {
	if len(lx.ctx) == 0 {
		return ctxPlain
	}
	return lx.ctx[len(lx.ctx)-1]
}

func (lx *Lexer) pushCtx(k ctxKind) { lx.ctx = append(lx.ctx, k) }

func (lx *Lexer) setTop(k ctxKind) {
	if len(lx.ctx) == 0 {
		lx.pushCtx(k)
		return
	}
	lx.ctx[len(lx.ctx)-1] = k
}

func (lx *Lexer) popCtx() {
	if len(lx.ctx) > 0 {
		lx.ctx = lx.ctx[:len(lx.ctx)-1]
	}
}

// Line reports the 1-based source line containing offset, for diagnostics.
func (lx *Lexer) Line(offset int) int { return diag.Line(lx.text, offset) }

// Next scans and returns the following token.
func (lx *Lexer) Next() (Token, error) {
	lx.skipSpace()
	start := lx.pos
	if lx.atEnd() {
		return Token{Kind: Eof, Offset: start}, nil
	}

	switch lx.peekByte() {
	case '[':
		if start+1 < len(lx.text) && lx.text[start+1] == '=' {
			lx.pos += 2
			lx.pushCtx(ctxWantTableName)
			return Token{Kind: TableBegin, Offset: start}, nil
		}
		lx.pos++
		lx.pushCtx(ctxPlain)
		return Token{Kind: ListBegin, Offset: start}, nil
	case ']':
		lx.pos++
		lx.popCtx()
		return Token{Kind: ListEnd, Offset: start}, nil
	case '{':
		lx.pos++
		lx.pushCtx(ctxPlain)
		return Token{Kind: DictBegin, Offset: start}, nil
	case '}':
		lx.pos++
		lx.popCtx()
		return Token{Kind: DictEnd, Offset: start}, nil
	case '=':
		if start+1 < len(lx.text) && lx.text[start+1] == ']' {
			lx.pos += 2
			lx.popCtx()
			return Token{Kind: TableEnd, Offset: start}, nil
		}
		lx.pos++
		lx.setTop(ctxInTableRows)
		return Token{Kind: TableRows, Offset: start}, nil
	case '<':
		return lx.tokenizeText(start)
	case '(':
		return lx.tokenizeBytes(start)
	}

	r, _ := lx.peekRune()
	if r == '-' {
		if start+1 < len(lx.text) {
			nr, _ := utf8.DecodeRuneInString(lx.text[start+1:])
			if unicode.IsDigit(nr) {
				return lx.tokenizeNumberOrDate(start)
			}
		}
		return Token{}, diag.Errf(diag.Lex, lx.Line(start), "invalid character encountered: %q", string(r))
	}
	if unicode.IsDigit(r) {
		return lx.tokenizeNumberOrDate(start)
	}
	if unicode.IsLetter(r) {
		return lx.tokenizeKeyword(start)
	}
	return Token{}, diag.Errf(diag.Lex, lx.Line(start), "invalid character encountered: %q", string(r))
}

func (lx *Lexer) tokenizeText(start int) (Token, error) {
	end := strings.IndexByte(lx.text[lx.pos+1:], '>')
	if end == -1 {
		return Token{}, diag.Errf(diag.Lex, lx.Line(start), "unterminated string")
	}
	raw := lx.text[lx.pos+1 : lx.pos+1+end]
	lx.pos += end + 2
	decoded := unescapeXML(raw)

	switch lx.top() {
	case ctxWantTableName:
		lx.setTop(ctxWantTableField)
		return Token{Kind: TableName, Offset: start, StrVal: decoded}, nil
	case ctxWantTableField:
		return Token{Kind: TableFieldName, Offset: start, StrVal: decoded}, nil
	default:
		return Token{Kind: StrTok, Offset: start, StrVal: decoded}, nil
	}
}

func (lx *Lexer) tokenizeBytes(start int) (Token, error) {
	end := strings.IndexByte(lx.text[lx.pos+1:], ')')
	if end == -1 {
		return Token{}, diag.Errf(diag.Lex, lx.Line(start), "unterminated bytes")
	}
	raw := lx.text[lx.pos+1 : lx.pos+1+end]
	lx.pos += end + 2
	b, err := decodeHex(raw)
	if err != nil {
		return Token{}, diag.Errf(diag.Lex, lx.Line(start), "malformed hex bytes: %v", err)
	}
	return Token{Kind: BytesTok, Offset: start, Bytes: b}, nil
}

func (lx *Lexer) tokenizeKeyword(start int) (Token, error) {
	for !lx.atEnd() {
		r, size := lx.peekRune()
		if !unicode.IsLetter(r) {
			break
		}
		lx.pos += size
	}
	word := upperASCII(lx.text[start:lx.pos])
	switch word {
	case "NULL":
		return Token{Kind: NullTok, Offset: start}, nil
	case "NO", "FALSE":
		return Token{Kind: BoolTok, Offset: start, BoolVal: false}, nil
	case "YES", "TRUE":
		return Token{Kind: BoolTok, Offset: start, BoolVal: true}, nil
	default:
		return Token{}, diag.Errf(diag.Lex, lx.Line(start), "invalid keyword literal: %q", lx.text[start:lx.pos])
	}
}

// isNumDateChar reports whether b is in the accumulation alphabet for a number/date run (spec
// §4.1: "Accumulate a run of [-+.:eETZ0-9]").
func isNumDateChar(b byte) bool {
	switch b {
	case '-', '+', '.', ':', 'e', 'E', 'T', 'Z':
		return true
	}
	return b >= '0' && b <= '9'
}

func (lx *Lexer) tokenizeNumberOrDate(start int) (Token, error) {
	p := lx.pos
	for p < len(lx.text) && isNumDateChar(lx.text[p]) {
		p++
	}
	text := lx.text[lx.pos:p]
	lx.pos = p

	negative := strings.HasPrefix(text, "-")

	switch {
	case strings.ContainsAny(text, ":TZ"):
		if negative {
			return Token{}, diag.Errf(diag.Lex, lx.Line(start), "datetime literal cannot be negative: %q", text)
		}
		t, zulu, err := parseDateTime(text)
		if err != nil {
			return Token{}, diag.Errf(diag.Lex, lx.Line(start), "malformed datetime literal %q: %v", text, err)
		}
		return Token{Kind: DateTimeTok, Offset: start, TimeVal: t, Zulu: zulu}, nil
	case strings.Count(text, "-") == 2:
		if negative {
			return Token{}, diag.Errf(diag.Lex, lx.Line(start), "date literal cannot be negative: %q", text)
		}
		t, err := time.Parse("2006-01-02", text)
		if err != nil {
			return Token{}, diag.Errf(diag.Lex, lx.Line(start), "malformed date literal %q: %v", text, err)
		}
		return Token{Kind: DateTok, Offset: start, TimeVal: t}, nil
	case strings.ContainsAny(text, ".eE"):
		r, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, diag.Errf(diag.Lex, lx.Line(start), "malformed real literal %q: %v", text, err)
		}
		return Token{Kind: RealTok, Offset: start, RealVal: r}, nil
	default:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Token{}, diag.Errf(diag.Lex, lx.Line(start), "malformed int literal %q: %v", text, err)
		}
		return Token{Kind: IntTok, Offset: start, IntVal: i}, nil
	}
}

func parseDateTime(text string) (time.Time, bool, error) {
	zulu := strings.HasSuffix(text, "Z")
	if zulu {
		text = text[:len(text)-1]
	}
	layout := "2006-01-02"
	if idx := strings.IndexByte(text, 'T'); idx >= 0 {
		switch len(text) - idx {
		case len("T15:04:05"):
			layout = "2006-01-02T15:04:05"
		case len("T15:04"):
			layout = "2006-01-02T15:04"
		default:
			layout = "2006-01-02T15:04:05"
		}
	}
	t, err := time.Parse(layout, text)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), zulu, nil
}

func upperASCII(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 32
		}
		out[i] = c
	}
	return string(out)
}

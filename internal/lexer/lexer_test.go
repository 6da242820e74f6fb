package lexer

import (
	"strings"
	"testing"

	"github.com/SimonWaldherr/pxd/internal/diag"
)

func mustLex(t *testing.T, text string) *Lexer {
	t.Helper()
	lx, err := New(text, diag.NewSession(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return lx
}

func tokenKinds(t *testing.T, lx *Lexer) []Kind {
	t.Helper()
	var kinds []Kind
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		kinds = append(kinds, tok.Kind)
		if tok.Kind == Eof {
			return kinds
		}
	}
}

func TestHeaderVersionAndCustom(t *testing.T) {
	lx := mustLex(t, "pxd 1.0 demo tag\n[ 1 ]\n")
	if lx.Version() != 1.0 {
		t.Errorf("Version() = %v, want 1.0", lx.Version())
	}
	if lx.Custom() != "demo tag" {
		t.Errorf("Custom() = %q, want %q", lx.Custom(), "demo tag")
	}
}

func TestHeaderCustomWhitespacePreservedVerbatim(t *testing.T) {
	lx := mustLex(t, "pxd 1.0   with  spaces\n[ ]\n")
	if lx.Custom() != "with  spaces" {
		t.Errorf("Custom() = %q, want %q", lx.Custom(), "with  spaces")
	}
}

func TestHeaderMissingNewline(t *testing.T) {
	_, err := New("pxd 1.0", diag.NewSession(false))
	if err == nil {
		t.Fatal("expected an error for a header with no trailing newline")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.HeaderMissing {
		t.Fatalf("expected diag.HeaderMissing, got %#v", err)
	}
}

func TestHeaderNotPxd(t *testing.T) {
	_, err := New("csv 1.0\n[ ]\n", diag.NewSession(false))
	if err == nil {
		t.Fatal("expected an error for a non-pxd header")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.NotPxd {
		t.Fatalf("expected diag.NotPxd, got %#v", err)
	}
}

func TestHeaderVersionTooHighWarnsNotErrors(t *testing.T) {
	sess := diag.NewSession(false)
	if _, err := New("pxd 9.0\n[ ]\n", sess); err != nil {
		t.Fatalf("expected version warning, not a fatal error: %v", err)
	}
}

func TestHeaderVersionTooHighWarnAsError(t *testing.T) {
	sess := diag.NewSession(true)
	_, err := New("pxd 9.0\n[ ]\n", sess)
	if err == nil {
		t.Fatal("expected warn-as-error to turn the version mismatch into a fatal error")
	}
}

func TestTokenizeMinimalList(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ 1 2 3 ]\n")
	got := tokenKinds(t, lx)
	want := []Kind{ListBegin, IntTok, IntTok, IntTok, ListEnd, Eof}
	if !kindsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeTable(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[= <People> <name> <age> =\n <Ada> 36\n=]\n")
	got := tokenKinds(t, lx)
	want := []Kind{
		TableBegin, TableName, TableFieldName, TableFieldName, TableRows,
		StrTok, IntTok, TableEnd, Eof,
	}
	if !kindsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeBytesAndNull(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n{ <k> (DE AD BE EF) <z> null }\n")
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == Eof {
			break
		}
	}
	var bytesTok, nullTok *Token
	for i := range toks {
		if toks[i].Kind == BytesTok {
			bytesTok = &toks[i]
		}
		if toks[i].Kind == NullTok {
			nullTok = &toks[i]
		}
	}
	if bytesTok == nil || string(bytesTok.Bytes) != "\xDE\xAD\xBE\xEF" {
		t.Fatalf("bytes token = %#v", bytesTok)
	}
	if nullTok == nil {
		t.Fatal("expected a Null token")
	}
}

func TestKeywordLiterals(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ yes no true false null ]\n")
	var bools []bool
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tok.Kind == BoolTok {
			bools = append(bools, tok.BoolVal)
		}
		if tok.Kind == Eof {
			break
		}
	}
	want := []bool{true, false, true, false}
	if len(bools) != len(want) {
		t.Fatalf("got %v bools, want %v", bools, want)
	}
	for i := range want {
		if bools[i] != want[i] {
			t.Fatalf("bool[%d] = %v, want %v", i, bools[i], want[i])
		}
	}
}

func TestNumberDateDisambiguation(t *testing.T) {
	cases := []struct {
		text string
		kind Kind
	}{
		{"42", IntTok},
		{"-42", IntTok},
		{"3.5", RealTok},
		{"1e9", RealTok},
		{"2024-01-02", DateTok},
		{"2024-01-02T03:04:05", DateTimeTok},
		{"2024-01-02T03:04:05Z", DateTimeTok},
	}
	for _, c := range cases {
		lx := mustLex(t, "pxd 1.0\n[ "+c.text+" ]\n")
		_, _ = lx.Next() // ListBegin
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("%s: %v", c.text, err)
		}
		if tok.Kind != c.kind {
			t.Errorf("%q classified as %s, want %s", c.text, tok.Kind, c.kind)
		}
	}
}

func TestDateTimeZuluRoundTripsToUTC(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ 2024-01-02T03:04:05Z ]\n")
	_, _ = lx.Next()
	tok, err := lx.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !tok.Zulu {
		t.Fatal("expected Zulu flag set")
	}
	if tok.TimeVal.Location().String() != "UTC" {
		t.Fatalf("expected UTC location, got %v", tok.TimeVal.Location())
	}
}

func TestNegativeDateRejected(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ -2024-01-02 ]\n")
	_, _ = lx.Next()
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected a lex error for a negative date literal")
	}
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ <unterminated ]\n")
	_, _ = lx.Next()
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected a lex error for an unterminated string")
	}
}

func TestUnterminatedBytesIsFatal(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ (DEAD ]\n")
	_, _ = lx.Next()
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected a lex error for unterminated bytes")
	}
}

func TestMalformedHexIsFatal(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ (DEADX) ]\n")
	_, _ = lx.Next()
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected a lex error for malformed hex digits")
	}
}

func TestXMLEntityUnescaping(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ <a &lt;b&gt; &amp; &quot;c&quot; &apos;d&apos;> ]\n")
	_, _ = lx.Next()
	tok, err := lx.Next()
	if err != nil {
		t.Fatal(err)
	}
	want := `a <b> & "c" 'd'`
	if tok.StrVal != want {
		t.Fatalf("unescaped = %q, want %q", tok.StrVal, want)
	}
}

func TestInvalidKeywordIsFatal(t *testing.T) {
	lx := mustLex(t, "pxd 1.0\n[ bogus ]\n")
	_, _ = lx.Next()
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected a lex error for an unrecognized keyword")
	}
}

func TestLineDerivation(t *testing.T) {
	text := "pxd 1.0\n[\n  1\n]\n"
	line := diag.Line(text, strings.LastIndex(text, "1"))
	if line != 3 {
		t.Fatalf("Line() = %d, want 3", line)
	}
}

func kindsEqual(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

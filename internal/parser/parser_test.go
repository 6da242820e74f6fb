package parser

import (
	"testing"
	"time"

	"github.com/SimonWaldherr/pxd/internal/diag"
	"github.com/SimonWaldherr/pxd/internal/value"
)

func mustParse(t *testing.T, text string) value.Doc {
	t.Helper()
	doc, err := Parse(text, diag.NewSession(false), 0)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return doc
}

// TestMinimalList covers a minimal list document.
func TestMinimalList(t *testing.T) {
	doc := mustParse(t, "pxd 1.0\n[ 1 2 3 ]\n")
	if doc.Custom != "" {
		t.Errorf("Custom = %q, want empty", doc.Custom)
	}
	want := value.NewList([]value.Value{value.NewInt(1), value.NewInt(2), value.NewInt(3)})
	if !doc.Root.Equal(want) {
		t.Fatalf("Root = %#v, want %#v", doc.Root, want)
	}
}

// TestDictWithMixedScalars covers a dict holding mixed scalar types.
func TestDictWithMixedScalars(t *testing.T) {
	doc := mustParse(t, "pxd 1.0 demo\n{ <name> <Ada> <born> 1815-12-10 <tags> [ <math> <cs> ] }\n")
	if doc.Custom != "demo" {
		t.Errorf("Custom = %q, want demo", doc.Custom)
	}
	if doc.Root.Kind() != value.KindDict {
		t.Fatalf("Root.Kind() = %s, want Dict", doc.Root.Kind())
	}
	d := doc.Root.AsDict()
	name, ok := d.Get(value.NewStr("name"))
	if !ok || name.AsStr() != "Ada" {
		t.Fatalf("name = %v, ok=%v", name, ok)
	}
	born, ok := d.Get(value.NewStr("born"))
	if !ok || born.Kind() != value.KindDate {
		t.Fatalf("born = %v, ok=%v", born, ok)
	}
	wantDate := time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC)
	if !born.AsTime().Equal(wantDate) {
		t.Fatalf("born = %v, want %v", born.AsTime(), wantDate)
	}
	tags, ok := d.Get(value.NewStr("tags"))
	if !ok || tags.Kind() != value.KindList || len(tags.AsList()) != 2 {
		t.Fatalf("tags = %v, ok=%v", tags, ok)
	}
}

// TestTable covers a table with a name, field names, and rows.
func TestTable(t *testing.T) {
	doc := mustParse(t, "pxd 1.0\n[= <People> <name> <age> =\n  <Ada> 36\n  <Grace> 85\n=]\n")
	if doc.Root.Kind() != value.KindTable {
		t.Fatalf("Root.Kind() = %s, want Table", doc.Root.Kind())
	}
	tbl := doc.Root.AsTable()
	if tbl.Name() != "People" {
		t.Errorf("Name() = %q, want People", tbl.Name())
	}
	if len(tbl.Fields()) != 2 || tbl.Fields()[0] != "name" || tbl.Fields()[1] != "age" {
		t.Fatalf("Fields() = %v", tbl.Fields())
	}
	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("NumRows = %d, want 2", len(rows))
	}
	if rows[0][0].AsStr() != "Ada" || rows[0][1].AsInt() != 36 {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1][0].AsStr() != "Grace" || rows[1][1].AsInt() != 85 {
		t.Errorf("row 1 = %v", rows[1])
	}
}

// TestBytesAndNull covers bytes and null values in a dict.
func TestBytesAndNull(t *testing.T) {
	doc := mustParse(t, "pxd 1.0\n{ <k> (DEAD BEEF) <z> null }\n")
	d := doc.Root.AsDict()
	k, ok := d.Get(value.NewStr("k"))
	if !ok || string(k.AsBytes()) != "\xDE\xAD\xBE\xEF" {
		t.Fatalf("k = %v, ok=%v", k, ok)
	}
	z, ok := d.Get(value.NewStr("z"))
	if !ok || z.Kind() != value.KindNull {
		t.Fatalf("z = %v, ok=%v", z, ok)
	}
}

// TestRejectedIllegalDictKeyType covers a dict key of a disallowed Kind.
func TestRejectedIllegalDictKeyType(t *testing.T) {
	_, err := Parse("pxd 1.0\n{ 1.5 <x> }\n", diag.NewSession(false), 0)
	if err == nil {
		t.Fatal("expected a parse error for a Real dict key")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.Parse {
		t.Fatalf("expected diag.Parse, got %#v", err)
	}
}

// TestRejectedNestedCollectionInTable covers a nested collection where a table expects only scalar cells.
func TestRejectedNestedCollectionInTable(t *testing.T) {
	_, err := Parse("pxd 1.0\n[= <T> <a> = [ 1 ] =]\n", diag.NewSession(false), 0)
	if err == nil {
		t.Fatal("expected a parse error for a nested list inside a table")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.Parse {
		t.Fatalf("expected diag.Parse, got %#v", err)
	}
}

func TestEmptyListAndDictAndZeroRowTable(t *testing.T) {
	doc := mustParse(t, "pxd 1.0\n[ ]\n")
	if len(doc.Root.AsList()) != 0 {
		t.Fatal("expected an empty list")
	}
	doc = mustParse(t, "pxd 1.0\n{ }\n")
	if doc.Root.AsDict().Len() != 0 {
		t.Fatal("expected an empty dict")
	}
	doc = mustParse(t, "pxd 1.0\n[= <T> <a> =\n=]\n")
	tbl := doc.Root.AsTable()
	if tbl.NumRows() != 0 {
		t.Fatalf("expected zero rows, got %d", tbl.NumRows())
	}
}

func TestTableWithNoFieldNamesRejected(t *testing.T) {
	_, err := Parse("pxd 1.0\n[= <T> =]\n", diag.NewSession(false), 0)
	if err == nil {
		t.Fatal("expected an error for a table with no field names")
	}
}

func TestUnterminatedContainerAtEOF(t *testing.T) {
	_, err := Parse("pxd 1.0\n[ 1 2", diag.NewSession(false), 0)
	if err == nil {
		t.Fatal("expected an error for an unterminated list at EOF")
	}
}

func TestDocumentMustBeginWithContainer(t *testing.T) {
	_, err := Parse("pxd 1.0\n42\n", diag.NewSession(false), 0)
	if err == nil {
		t.Fatal("expected an error: a bare scalar cannot be the document root")
	}
}

func TestTrailingContentAfterRootRejected(t *testing.T) {
	_, err := Parse("pxd 1.0\n[ 1 ] [ 2 ]\n", diag.NewSession(false), 0)
	if err == nil {
		t.Fatal("expected an error for content after the root value")
	}
}

func TestDepthLimitExceeded(t *testing.T) {
	text := "pxd 1.0\n" + repeat("[ ", 5) + "1" + repeat(" ]", 5) + "\n"
	_, err := Parse(text, diag.NewSession(false), 3)
	if err == nil {
		t.Fatal("expected a depth-exceeded error")
	}
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.DepthExceeded {
		t.Fatalf("expected diag.DepthExceeded, got %#v", err)
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestTableRecordArity(t *testing.T) {
	doc := mustParse(t, "pxd 1.0\n[= <T> <a> <b> =\n  1 2\n=]\n")
	tbl := doc.Root.AsTable()
	for _, row := range tbl.Rows() {
		if len(row) != len(tbl.Fields()) {
			t.Fatalf("record length %d != field count %d", len(row), len(tbl.Fields()))
		}
	}
}

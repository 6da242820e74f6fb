package value

import (
	"fmt"
	"strings"
)

// Table is a named, field-named, row-oriented container of scalar values.
// It keeps an ordered field-name vector plus a name->index cache so
// Row.Get is an O(1) map lookup followed by a slice index, rather than
// relying on a generated per-table record type.
type Table struct {
	name     string
	fields   []string
	fieldPos map[string]int
	records  [][]Value
	pending  []Value // the row currently being filled, like a SQL INSERT builder
}

// NewTable allocates a Table with the given name. Field names are added
// afterward with AppendFieldName, mirroring the parser's TableName ->
// TableFieldName* state progression.
func NewTable(name string) *Table {
	return &Table{name: name, fieldPos: make(map[string]int)}
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// SetName sets the table's name. It is called once by the parser
// immediately after a TableBegin, before any field names are read.
func (t *Table) SetName(name string) { t.name = name }

// Fields returns the field names in declaration order. The returned slice
// must not be mutated by the caller.
func (t *Table) Fields() []string { return t.fields }

// AppendFieldName appends a field name. It is forbidden once any row has
// been started.
func (t *Table) AppendFieldName(name string) error {
	if len(t.records) > 0 || len(t.pending) > 0 {
		return fmt.Errorf("table %q: cannot append field name %q after rows have started", t.name, name)
	}
	t.fieldPos[strings.ToLower(name)] = len(t.fields)
	t.fields = append(t.fields, name)
	return nil
}

// FieldIndex returns the zero-based index of the named field.
func (t *Table) FieldIndex(name string) (int, error) {
	i, ok := t.fieldPos[strings.ToLower(name)]
	if !ok {
		return -1, fmt.Errorf("table %q: unknown field %q", t.name, name)
	}
	return i, nil
}

// Append adds val to the row currently being filled, starting a new row
// first if the previous one is already full.
func (t *Table) Append(val Value) error {
	if len(t.fields) == 0 {
		return fmt.Errorf("table %q: cannot append a value with no field names declared", t.name)
	}
	if !val.Kind().IsScalar() {
		return fmt.Errorf("table %q: cell values must be scalars, got %s", t.name, val.Kind())
	}
	t.pending = append(t.pending, val)
	if len(t.pending) == len(t.fields) {
		t.records = append(t.records, t.pending)
		t.pending = nil
	}
	return nil
}

// Finalize checks the table's invariants: a non-empty name, at least one
// field name, and no partially filled row left over. It is called once
// at TableEnd.
func (t *Table) Finalize() error {
	if t.name == "" {
		return fmt.Errorf("table cannot be finalized with an empty name")
	}
	if len(t.fields) == 0 {
		return fmt.Errorf("table %q: cannot be finalized with zero field names", t.name)
	}
	if len(t.pending) != 0 {
		return fmt.Errorf("table %q: incomplete record at end of table (got %d of %d fields)", t.name, len(t.pending), len(t.fields))
	}
	return nil
}

// Rows returns the completed records, each of length len(Fields()). The
// returned slices must not be mutated by the caller.
func (t *Table) Rows() [][]Value { return t.records }

// NumRows returns the number of completed records.
func (t *Table) NumRows() int { return len(t.records) }

// Row wraps one record plus a pointer back to its owning Table's field
// index, giving field-named access without a generated per-table type.
type Row struct {
	table  *Table
	record []Value
}

// Iterate returns the table's records as field-named Rows. It requires a
// name and at least one field name.
func (t *Table) Iterate() ([]Row, error) {
	if t.name == "" || len(t.fields) == 0 {
		return nil, fmt.Errorf("table %q: cannot iterate without a name and field names", t.name)
	}
	rows := make([]Row, len(t.records))
	for i, rec := range t.records {
		rows[i] = Row{table: t, record: rec}
	}
	return rows, nil
}

// Get returns the value of the named field in this row.
func (r Row) Get(field string) (Value, error) {
	idx, err := r.table.FieldIndex(field)
	if err != nil {
		return Value{}, err
	}
	return r.record[idx], nil
}

// Values returns the row's cells in field-declaration order. The returned
// slice must not be mutated by the caller.
func (r Row) Values() []Value { return r.record }

// Equal reports whether t and other have the same name, fields, and rows.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.name != other.name || len(t.fields) != len(other.fields) || len(t.records) != len(other.records) {
		return false
	}
	for i := range t.fields {
		if t.fields[i] != other.fields[i] {
			return false
		}
	}
	for i := range t.records {
		if len(t.records[i]) != len(other.records[i]) {
			return false
		}
		for j := range t.records[i] {
			if !t.records[i][j].Equal(other.records[i][j]) {
				return false
			}
		}
	}
	return true
}

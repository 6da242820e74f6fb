package value

import (
	"fmt"
)

// Dict is an insertion-ordered key->Value mapping. Keys are restricted to
// Int, Date, DateTime, Str, and Bytes; Set rejects any other key Kind.
type Dict struct {
	keys   []Value
	values []Value
	index  map[string]int // canonical key string -> position in keys/values
}

// NewDict allocates an empty Dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// keyString renders a scalar key to a canonical comparison string. Distinct
// Kinds never collide because each canonical form is prefixed by its Kind.
func keyString(k Value) (string, error) {
	switch k.Kind() {
	case KindInt:
		return fmt.Sprintf("i:%d", k.AsInt()), nil
	case KindDate:
		return fmt.Sprintf("d:%s", k.AsTime().Format("2006-01-02")), nil
	case KindDateTime:
		return fmt.Sprintf("dt:%s:%v", k.AsTime().Format("2006-01-02T15:04:05"), k.Zulu()), nil
	case KindStr:
		return "s:" + k.AsStr(), nil
	case KindBytes:
		return "b:" + string(k.AsBytes()), nil
	default:
		return "", fmt.Errorf("illegal dict key type: %s", k.Kind())
	}
}

// Set inserts or overwrites key->val, appending key at the end of the
// insertion order when it is new. It returns an error if key is not one of
// the permitted key Kinds.
func (d *Dict) Set(key, val Value) error {
	ks, err := keyString(key)
	if err != nil {
		return err
	}
	if pos, ok := d.index[ks]; ok {
		d.values[pos] = val
		return nil
	}
	d.index[ks] = len(d.keys)
	d.keys = append(d.keys, key)
	d.values = append(d.values, val)
	return nil
}

// Len returns the number of entries in d.
func (d *Dict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (d *Dict) Keys() []Value { return d.keys }

// Values returns the values in the same order as Keys. The returned slice
// must not be mutated by the caller.
func (d *Dict) Values() []Value { return d.values }

// Get looks up key, reporting whether it was present.
func (d *Dict) Get(key Value) (Value, bool) {
	ks, err := keyString(key)
	if err != nil {
		return Value{}, false
	}
	pos, ok := d.index[ks]
	if !ok {
		return Value{}, false
	}
	return d.values[pos], true
}

// Equal reports whether d and other hold the same entries in the same
// insertion order.
func (d *Dict) Equal(other *Dict) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.keys) != len(other.keys) {
		return false
	}
	for i := range d.keys {
		if !d.keys[i].Equal(other.keys[i]) || !d.values[i].Equal(other.values[i]) {
			return false
		}
	}
	return true
}

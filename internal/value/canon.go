package value

import (
	"hash/fnv"
	"strconv"
	"unicode"
)

// CanonicalTableName and CanonicalFieldName turn a Table's on-disk name and
// field names into valid Go-identifier-like accessor names. They are
// offered as plain helper functions for callers that build their own
// accessors from a Table's field list, rather than generating record
// types; they never affect the on-disk name, which Table.Name/Table.Fields
// preserve verbatim.
func stripNonWord(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

// CanonicalTableName canonicalizes name for use as an accessor identifier.
// An empty or all-non-word result falls back to a deterministic
// Table<hash> synthesized from the original name.
func CanonicalTableName(name string) string {
	c := stripNonWord(name)
	if c == "" {
		return "Table" + tableHash(name)
	}
	if r := []rune(c)[0]; !unicode.IsLetter(r) {
		c = "Table" + c
	}
	return c
}

// CanonicalFieldName canonicalizes the field at position n (0-based) in
// fields for use as an accessor identifier. An empty result synthesizes
// Field<n>.
func CanonicalFieldName(fields []string, n int) string {
	c := stripNonWord(fields[n])
	if c == "" {
		return "Field" + strconv.Itoa(n)
	}
	if r := []rune(c)[0]; !unicode.IsLetter(r) {
		c = "Field" + c
	}
	return c
}

func tableHash(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return strconv.FormatUint(uint64(h.Sum32()), 16)
}

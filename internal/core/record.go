package core

// record.go defines the in-memory shape of tabular data flowing through an import.
//
// A Record is an ordered field -> scalar mapping. Field order is preserved so
// that generated INSERT statements list columns in the order the source (and
// then the mapping) declared them. Values are one of int64, float64, string,
// time.Time or nil; readers may also hand in other Go scalars (int, bool)
// which coercion rules normalise.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is an ordered mapping from field name to scalar value.
// The zero value is an empty record ready to use.
type Record struct {
	fields []string
	values map[string]any
}

// NewRecord builds a record from parallel field and value slices.
// Missing trailing values are treated as null.
func NewRecord(fields []string, values []any) Record {
	r := Record{
		fields: make([]string, 0, len(fields)),
		values: make(map[string]any, len(fields)),
	}
	for i, f := range fields {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Set(f, v)
	}
	return r
}

// RecordOf builds a record from alternating field/value arguments.
// It panics on an odd argument count or a non-string field name.
//
//	core.RecordOf("id", 1, "name", "Cairo")
func RecordOf(kv ...any) Record {
	if len(kv)%2 != 0 {
		panic("core.RecordOf: odd number of arguments")
	}
	r := Record{values: make(map[string]any, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("core.RecordOf: field name %v is not a string", kv[i]))
		}
		r.Set(name, kv[i+1])
	}
	return r
}

// Fields returns the field names in order. The slice must not be modified.
func (r Record) Fields() []string {
	return r.fields
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Has reports whether the field is present (its value may still be null).
func (r Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Get returns the value of a field and whether it is present.
func (r Record) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Value returns the value of a field, or nil when absent.
func (r Record) Value(field string) any {
	return r.values[field]
}

// IsNull reports whether the field is absent or holds a null value.
func (r Record) IsNull(field string) bool {
	return IsNull(r.values[field])
}

// Set assigns a value, appending the field if it is new.
func (r *Record) Set(field string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

// Delete removes a field if present.
func (r *Record) Delete(field string) {
	if _, ok := r.values[field]; !ok {
		return
	}
	delete(r.values, field)
	for i, f := range r.fields {
		if f == field {
			r.fields = append(r.fields[:i:i], r.fields[i+1:]...)
			break
		}
	}
}

// Rename moves the value of from to to, keeping from's position.
// An existing field named to is replaced. Renaming an absent field is a no-op.
func (r *Record) Rename(from, to string) {
	if from == to {
		return
	}
	v, ok := r.values[from]
	if !ok {
		return
	}
	r.Delete(to)
	delete(r.values, from)
	r.values[to] = v
	for i, f := range r.fields {
		if f == from {
			r.fields[i] = to
			break
		}
	}
}

// Values returns the values in field order.
func (r Record) Values() []any {
	out := make([]any, len(r.fields))
	for i, f := range r.fields {
		out[i] = r.values[f]
	}
	return out
}

// Clone returns a deep copy of the field list and value map.
func (r Record) Clone() Record {
	c := Record{
		fields: make([]string, len(r.fields)),
		values: make(map[string]any, len(r.values)),
	}
	copy(c.fields, r.fields)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// String renders the record as {field=value, ...} for diagnostics.
func (r Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f)
		b.WriteByte('=')
		if IsNull(r.values[f]) {
			b.WriteString("null")
		} else {
			b.WriteString(KeyString(r.values[f]))
		}
	}
	b.WriteByte('}')
	return b.String()
}

// RecordSet is a materialized source: declared column names plus rows.
type RecordSet struct {
	Columns []string
	Records []Record
}

// HasColumn reports whether the declared schema contains the column.
func (s RecordSet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (s RecordSet) Len() int {
	return len(s.Records)
}

// IsNull reports whether a value counts as null: nil, a blank string or NaN.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case *string:
		return x == nil || strings.TrimSpace(*x) == ""
	case *time.Time:
		return x == nil
	}
	return false
}

// KeyString returns a canonical text form of a value for key comparison:
// integral floats compare equal to integers, strings are trimmed and
// timestamps use RFC 3339.
func KeyString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return KeyString(float64(x))
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

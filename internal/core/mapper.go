package core

// mapper.go translates source records into the target vocabulary.
//
// Steps, applied per record in this order:
//  1. Renames, in declaration order
//  2. Copies
//  3. Defaults for null or absent target fields
//  4. Coercions (int, float, timestamp, truncated string)
//  5. Drop-null filter for fields the profile routes away from validation
//  6. Projection onto the profile's declared columns, when it declares any
//
// Configuration defects are reported by NewMapper as a MappingError before
// any data is seen; Map itself never fails.

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Mapper applies one entity's MappingSpec.
type Mapper struct {
	entity   string
	spec     MappingSpec
	dropNull []string // target field names
	columns  []string // projection; empty keeps every field

	// Now supplies the timestamp for the "now" null policy.
	Now func() time.Time
}

// NewMapper checks the mapping against the profile and returns a ready Mapper.
func NewMapper(spec MappingSpec, profile EntityProfile) (*Mapper, error) {
	if err := checkMapping(spec); err != nil {
		return nil, &MappingError{Entity: profile.Name, Err: err}
	}

	m := &Mapper{
		entity: profile.Name,
		spec:   spec,
		Now:    time.Now,
	}
	for _, f := range profile.DropNullFields {
		m.dropNull = append(m.dropNull, spec.TargetOf(f))
	}
	for _, c := range profile.Columns {
		m.columns = append(m.columns, c.Name)
	}
	return m, nil
}

// checkMapping collects every structural problem in a mapping spec.
func checkMapping(spec MappingSpec) error {
	var result *multierror.Error

	for i, r := range spec.Renames {
		if r.From == "" || r.To == "" {
			result = multierror.Append(result, fmt.Errorf("rename #%d: from and to are required", i+1))
		}
	}

	for i, c := range spec.Copies {
		if c.From == "" || c.To == "" {
			result = multierror.Append(result, fmt.Errorf("copy #%d: from and to are required", i+1))
		}
	}

	for i, d := range spec.Defaults {
		if d.Field == "" {
			result = multierror.Append(result, fmt.Errorf("default #%d: field is required", i+1))
		}
	}

	seen := make(map[string]bool, len(spec.Coercions))
	for _, c := range spec.Coercions {
		if c.Field == "" {
			result = multierror.Append(result, fmt.Errorf("coercion with kind %q has no field", c.Kind))
			continue
		}
		if seen[c.Field] {
			result = multierror.Append(result, fmt.Errorf("field %q has more than one coercion", c.Field))
		}
		seen[c.Field] = true

		switch c.Kind {
		case CoerceInt:
			if c.Fallback != nil {
				if _, err := ToInt(c.Fallback); err != nil {
					result = multierror.Append(result, fmt.Errorf("field %q: fallback %v is not an integer", c.Field, c.Fallback))
				}
			}
		case CoerceFloat:
			if c.Fallback != nil {
				if _, err := ToFloat(c.Fallback); err != nil {
					result = multierror.Append(result, fmt.Errorf("field %q: fallback %v is not a number", c.Field, c.Fallback))
				}
			}
		case CoerceTimestamp:
			if c.OnMissing != "" && c.OnMissing != NullKeep && c.OnMissing != NullNow {
				result = multierror.Append(result, fmt.Errorf("field %q: on_missing must be %q or %q, got %q",
					c.Field, NullKeep, NullNow, c.OnMissing))
			}
		case CoerceString:
			if c.MaxLength < 0 {
				result = multierror.Append(result, fmt.Errorf("field %q: max_length must not be negative", c.Field))
			}
			if c.MaxLength == 0 && !c.LengthFromSchema {
				result = multierror.Append(result, fmt.Errorf("field %q: string coercion needs max_length or length_from_schema", c.Field))
			}
		default:
			result = multierror.Append(result, fmt.Errorf("field %q: unknown coercion kind %q", c.Field, c.Kind))
		}
	}

	return result.ErrorOrNil()
}

// Map returns the mapped records in input order, minus rows dropped by the
// drop-null filter. The input slice and its records are not modified.
func (m *Mapper) Map(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		mapped := m.transform(r)
		if m.dropped(mapped) {
			continue
		}
		out = append(out, m.project(mapped))
	}
	return out
}

// MapRecord maps a single record without the drop-null filter.
func (m *Mapper) MapRecord(r Record) Record {
	return m.project(m.transform(r))
}

// transform applies renames, copies, defaults and coercions to a copy of r.
func (m *Mapper) transform(r Record) Record {
	rec := r.Clone()

	for _, rn := range m.spec.Renames {
		rec.Rename(rn.From, rn.To)
	}

	for _, c := range m.spec.Copies {
		if v, ok := rec.Get(c.From); ok {
			rec.Set(c.To, v)
		}
	}

	for _, d := range m.spec.Defaults {
		if rec.IsNull(d.Field) {
			rec.Set(d.Field, d.Value)
		}
	}

	for _, c := range m.spec.Coercions {
		m.coerce(&rec, c)
	}

	return rec
}

// project keeps the declared columns, in declaration order. Columns the
// record lacks stay absent.
func (m *Mapper) project(r Record) Record {
	if len(m.columns) == 0 {
		return r
	}
	out := Record{
		fields: make([]string, 0, len(m.columns)),
		values: make(map[string]any, len(m.columns)),
	}
	for _, c := range m.columns {
		if v, ok := r.Get(c); ok {
			out.Set(c, v)
		}
	}
	return out
}

func (m *Mapper) dropped(r Record) bool {
	for _, f := range m.dropNull {
		if r.IsNull(f) {
			return true
		}
	}
	return false
}

// coerce applies one rule. Only c.Field is ever touched.
func (m *Mapper) coerce(rec *Record, c Coercion) {
	v, present := rec.Get(c.Field)

	switch c.Kind {
	case CoerceInt:
		if !present {
			return
		}
		if i, err := ToInt(v); err == nil {
			rec.Set(c.Field, i)
		} else {
			rec.Set(c.Field, intFallback(c.Fallback))
		}

	case CoerceFloat:
		if !present {
			return
		}
		if f, err := ToFloat(v); err == nil {
			rec.Set(c.Field, f)
		} else {
			rec.Set(c.Field, floatFallback(c.Fallback))
		}

	case CoerceTimestamp:
		if t, err := ToTimestamp(v); present && err == nil {
			rec.Set(c.Field, t)
			return
		}
		if c.OnMissing == NullNow {
			rec.Set(c.Field, m.Now())
		} else if present {
			rec.Set(c.Field, nil)
		}

	case CoerceString:
		if !present {
			return
		}
		s, err := ToText(v)
		if err != nil {
			rec.Set(c.Field, nil)
			return
		}
		rec.Set(c.Field, Truncate(s, c.MaxLength))
	}
}

func intFallback(v any) any {
	if v == nil {
		return nil
	}
	i, err := ToInt(v)
	if err != nil {
		return nil
	}
	return i
}

func floatFallback(v any) any {
	if v == nil {
		return nil
	}
	f, err := ToFloat(v)
	if err != nil {
		return nil
	}
	return f
}

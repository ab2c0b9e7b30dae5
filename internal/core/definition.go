package core

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ValidateDefinition checks an entity definition for configuration defects:
// missing identity, an empty conflict key, a conflict key or provisioned
// column set that the mapping cannot produce, and malformed mapping rules.
// All problems are reported together as one *MappingError.
func ValidateDefinition(def EntityDefinition) error {
	var result *multierror.Error
	p := def.Profile

	if p.Name == "" {
		result = multierror.Append(result, fmt.Errorf("entity name is required"))
	}
	if p.TargetTable == "" {
		result = multierror.Append(result, fmt.Errorf("target table is required"))
	}
	if def.Source == "" {
		result = multierror.Append(result, fmt.Errorf("source is required"))
	}
	if len(p.ConflictKey) == 0 {
		result = multierror.Append(result, fmt.Errorf("conflict key is required"))
	}
	if p.DedupeKeepFirst && p.UniqueKey == "" {
		result = multierror.Append(result, fmt.Errorf("dedupe_keep_first needs a unique key"))
	}

	if len(p.Columns) > 0 {
		declared := make(map[string]bool, len(p.Columns))
		for _, c := range p.Columns {
			if c.Name == "" {
				result = multierror.Append(result, fmt.Errorf("column with type %q has no name", c.Type))
				continue
			}
			if declared[c.Name] {
				result = multierror.Append(result, fmt.Errorf("column %q declared twice", c.Name))
			}
			declared[c.Name] = true
			switch c.Type {
			case ColumnInt, ColumnBigInt, ColumnFloat, ColumnText, ColumnTimestamp:
			case ColumnVarchar:
				if c.Length <= 0 {
					result = multierror.Append(result, fmt.Errorf("column %q: varchar needs a length", c.Name))
				}
			default:
				result = multierror.Append(result, fmt.Errorf("column %q: unknown type %q", c.Name, c.Type))
			}
		}
		for _, k := range p.ConflictKey {
			if !declared[k] {
				result = multierror.Append(result, fmt.Errorf("conflict key %q is not a declared column", k))
			}
		}
	}

	if err := checkMapping(def.Mapping); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return &MappingError{Entity: p.Name, Err: err}
	}
	return nil
}

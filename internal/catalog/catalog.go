// Package catalog loads entity definitions from a YAML file.
//
// A catalogue file replaces the built-in entity set. Its layout mirrors
// core.EntityDefinition:
//
//	entities:
//	  - name: cities
//	    table: cities
//	    group: customers
//	    source: city_id.xlsx
//	    order: 20
//	    required: [id, areas]
//	    unique_key: id
//	    conflict_key: [id]
//	    mapping:
//	      renames:
//	        - {from: areas, to: name}
//	      coercions:
//	        - {field: id, kind: int}
package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/bulkload/internal/core"
)

// File is the top-level shape of a catalogue document.
type File struct {
	Entities []core.EntityDefinition `yaml:"entities"`
}

// Load decodes a catalogue and validates every definition. All defects are
// reported together; the result is a *core.MappingError so callers treat it
// as a configuration failure.
func Load(r io.Reader) ([]core.EntityDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, &core.MappingError{Entity: "catalog", Err: err}
	}
	if len(f.Entities) == 0 {
		return nil, &core.MappingError{Entity: "catalog", Err: fmt.Errorf("no entities defined")}
	}

	var result *multierror.Error
	seen := make(map[string]bool, len(f.Entities))
	for i, def := range f.Entities {
		if err := core.ValidateDefinition(def); err != nil {
			result = multierror.Append(result, fmt.Errorf("entity #%d: %w", i+1, err))
		}
		if def.Name() != "" && seen[def.Name()] {
			result = multierror.Append(result, fmt.Errorf("entity #%d: %s is defined twice", i+1, def.Name()))
		}
		seen[def.Name()] = true
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, &core.MappingError{Entity: "catalog", Err: err}
	}

	return f.Entities, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) ([]core.EntityDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	defs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Install loads path and replaces the registry with its definitions.
func Install(path string) (int, error) {
	defs, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	if err := core.Replace(defs); err != nil {
		return 0, err
	}
	return len(defs), nil
}

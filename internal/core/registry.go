package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]EntityDefinition)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if an entity with the same name is already registered.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Name()]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Name()))
	}

	if def.Label == "" {
		def.Label = def.Name()
	}

	registry[def.Name()] = def
}

// Replace swaps the whole registry for defs, e.g. after loading a catalogue
// file. Returns an error on duplicate names and leaves the registry untouched.
func Replace(defs []EntityDefinition) error {
	next := make(map[string]EntityDefinition, len(defs))
	for _, def := range defs {
		if _, exists := next[def.Name()]; exists {
			return fmt.Errorf("entity defined twice: %s", def.Name())
		}
		if def.Label == "" {
			def.Label = def.Name()
		}
		next[def.Name()] = def
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry = next
	return nil
}

// Get returns an entity definition by name.
// Returns false if not found.
func Get(name string) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// All returns all registered entity definitions in run order.
func All() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sortByOrder(result)
	return result
}

// ByGroup returns the entity definitions of one group in run order.
func ByGroup(group string) []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []EntityDefinition
	for _, def := range registry {
		if def.Group == group {
			result = append(result, def)
		}
	}

	sortByOrder(result)
	return result
}

// Entities resolves a run selection: every entity for an empty group,
// otherwise the group's entities. Returns ErrUnknownGroup for an empty
// selection.
func Entities(group string) ([]EntityDefinition, error) {
	var defs []EntityDefinition
	if group == "" {
		defs = All()
	} else {
		defs = ByGroup(group)
	}
	if len(defs) == 0 {
		if group == "" {
			return nil, fmt.Errorf("%w: no entities registered", ErrUnknownGroup)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}
	return defs, nil
}

// Groups returns all unique group names in run order (by the lowest Order
// among each group's entities).
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	first := make(map[string]int)
	for _, def := range registry {
		if o, ok := first[def.Group]; !ok || def.Order < o {
			first[def.Group] = def.Order
		}
	}

	groups := make([]string, 0, len(first))
	for g := range first {
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if first[groups[i]] != first[groups[j]] {
			return first[groups[i]] < first[groups[j]]
		}
		return groups[i] < groups[j]
	})
	return groups
}

// EntityCount returns the number of registered entities.
func EntityCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered entities.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]EntityDefinition)
}

func sortByOrder(defs []EntityDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Order != defs[j].Order {
			return defs[i].Order < defs[j].Order
		}
		return defs[i].Name() < defs[j].Name()
	})
}

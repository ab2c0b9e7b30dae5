package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func def(name, group string, order int) EntityDefinition {
	return EntityDefinition{
		Profile: EntityProfile{Name: name, TargetTable: name, ConflictKey: []string{"id"}},
		Group:   group,
		Source:  name + ".xlsx",
		Order:   order,
	}
}

func TestRegistry(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(def("tickets", "tickets", 110))
	Register(def("cities", "customers", 10))
	Register(def("customers", "customers", 40))
	Register(def("calls", "calls", 210))

	assert.Equal(t, 4, EntityCount())

	got, ok := Get("cities")
	require.True(t, ok)
	assert.Equal(t, "cities", got.Label, "label defaults to the name")

	var names []string
	for _, d := range All() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"cities", "customers", "tickets", "calls"}, names)

	assert.Equal(t, []string{"customers", "tickets", "calls"}, Groups())
	assert.Len(t, ByGroup("customers"), 2)

	assert.Panics(t, func() { Register(def("cities", "customers", 11)) })
}

func TestEntities(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	_, err := Entities("")
	assert.True(t, errors.Is(err, ErrUnknownGroup))

	Register(def("cities", "customers", 10))
	Register(def("calls", "calls", 210))

	all, err := Entities("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	calls, err := Entities("calls")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "calls", calls[0].Name())

	_, err = Entities("nope")
	assert.ErrorIs(t, err, ErrUnknownGroup)
	assert.Contains(t, err.Error(), "nope")
}

func TestReplace(t *testing.T) {
	Clear()
	t.Cleanup(Clear)
	Register(def("old", "g", 1))

	err := Replace([]EntityDefinition{def("a", "g", 2), def("a", "g", 3)})
	require.Error(t, err)
	_, ok := Get("old")
	assert.True(t, ok, "a failed replace leaves the registry untouched")

	require.NoError(t, Replace([]EntityDefinition{def("a", "g", 2), def("b", "g", 1)}))
	_, ok = Get("old")
	assert.False(t, ok)
	assert.Equal(t, "b", All()[0].Name())
}

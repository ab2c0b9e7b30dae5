package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefinition_OK(t *testing.T) {
	d := EntityDefinition{
		Profile: EntityProfile{
			Name:        "customers",
			TargetTable: "customer",
			UniqueKey:   "id",
			ConflictKey: []string{"id"},
			Columns: []ColumnDef{
				{Name: "id", Type: ColumnBigInt, NotNull: true},
				{Name: "name", Type: ColumnVarchar, Length: 100},
				{Name: "joined", Type: ColumnTimestamp},
			},
		},
		Mapping: MappingSpec{Coercions: []Coercion{{Field: "id", Kind: CoerceInt}}},
		Source:  "customers.xlsx",
	}

	assert.NoError(t, ValidateDefinition(d))
}

func TestValidateDefinition_CollectsAllProblems(t *testing.T) {
	d := EntityDefinition{
		Profile: EntityProfile{
			Name:            "broken",
			DedupeKeepFirst: true,
			ConflictKey:     []string{"id"},
			Columns: []ColumnDef{
				{Name: "code", Type: ColumnVarchar},
				{Name: "code", Type: ColumnText},
				{Name: "x", Type: "blob"},
			},
		},
		Mapping: MappingSpec{Coercions: []Coercion{{Field: "code", Kind: CoerceString}}},
	}

	err := ValidateDefinition(d)
	require.Error(t, err)

	var mapErr *MappingError
	require.True(t, errors.As(err, &mapErr))
	assert.Equal(t, "broken", mapErr.Entity)

	msg := err.Error()
	for _, want := range []string{
		"target table is required",
		"source is required",
		"dedupe_keep_first needs a unique key",
		`column "code": varchar needs a length`,
		`column "code" declared twice`,
		`column "x": unknown type "blob"`,
		`conflict key "id" is not a declared column`,
		"needs max_length or length_from_schema",
	} {
		assert.Contains(t, msg, want)
	}
}

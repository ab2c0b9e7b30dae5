package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cityProfile() EntityProfile {
	return EntityProfile{
		Name:           "cities",
		TargetTable:    "city",
		RequiredFields: []string{"id", "name"},
		UniqueKey:      "id",
		ConflictKey:    []string{"id"},
	}
}

func TestValidate_OK(t *testing.T) {
	set := setOf(
		RecordOf("id", 1, "name", "A"),
		RecordOf("id", 2, "name", "B"),
	)

	ok, diags := Validate(set, cityProfile())
	assert.True(t, ok)
	assert.Empty(t, diags)
}

func TestValidate_Empty(t *testing.T) {
	ok, diags := Validate(RecordSet{Columns: []string{"id", "name"}}, cityProfile())
	assert.False(t, ok)
	assert.Equal(t, []string{"record set for cities is empty"}, diags)
}

func TestValidate_MissingRequiredField(t *testing.T) {
	set := setOf(RecordOf("id", 1))

	ok, diags := Validate(set, cityProfile())
	assert.False(t, ok)
	require.Len(t, diags, 1)
	assert.Equal(t, `required field "name" not found in cities data`, diags[0])
}

func TestValidate_NullsInRequiredField(t *testing.T) {
	set := setOf(
		RecordOf("id", 1, "name", "A"),
		RecordOf("id", 2, "name", ""),
		RecordOf("id", 3, "name", nil),
	)

	ok, diags := Validate(set, cityProfile())
	assert.False(t, ok)
	assert.Equal(t, []string{`found 2 null value(s) in required field "name"`}, diags)
}

func TestValidate_DropNullFieldSkipsNullCheck(t *testing.T) {
	profile := cityProfile()
	profile.DropNullFields = []string{"name"}
	set := setOf(RecordOf("id", 1, "name", nil))

	ok, diags := Validate(set, profile)
	assert.True(t, ok)
	assert.Empty(t, diags)
}

func TestValidate_DuplicateKey(t *testing.T) {
	set := setOf(
		RecordOf("id", 1, "name", "A"),
		RecordOf("id", 1, "name", "B"),
	)

	ok, diags := Validate(set, cityProfile())
	assert.False(t, ok)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], `duplicate value(s) for key "id"`)
	assert.Contains(t, diags[0], "[1]")
}

func TestValidate_DuplicateSamplesCapped(t *testing.T) {
	var records []Record
	for i := 0; i < 7; i++ {
		records = append(records, RecordOf("id", i, "name", "x"), RecordOf("id", i, "name", "y"))
	}

	ok, diags := Validate(setOf(records...), cityProfile())
	assert.False(t, ok)
	require.Len(t, diags, 1)
	assert.Equal(t, `found 7 duplicate value(s) for key "id": [0, 1, 2, 3, 4]...`, diags[0])
}

func TestValidate_DoesNotMutate(t *testing.T) {
	set := setOf(
		RecordOf("id", 1, "name", "A"),
		RecordOf("id", 1, "name", nil),
	)
	before := set.Records[1].String()

	Validate(set, cityProfile())
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, before, set.Records[1].String())
}

func TestDuplicateKeys_IntegralFloatsMatchInts(t *testing.T) {
	records := []Record{RecordOf("id", 1), RecordOf("id", 1.0), RecordOf("id", nil), RecordOf("id", nil)}

	values, total := DuplicateKeys(records, "id")
	assert.Equal(t, []string{"1"}, values)
	assert.Equal(t, 1, total, "null keys are never duplicates")
}

func TestDedupeKeepFirst(t *testing.T) {
	records := []Record{
		RecordOf("id", 1, "v", "first"),
		RecordOf("id", 2, "v", "x"),
		RecordOf("id", 1, "v", "second"),
		RecordOf("id", nil, "v", "n1"),
		RecordOf("id", nil, "v", "n2"),
	}

	kept, removed := DedupeKeepFirst(records, "id")
	assert.Equal(t, 1, removed)
	require.Len(t, kept, 4)
	assert.Equal(t, "first", kept[0].Value("v"))
	assert.Len(t, records, 5)
}

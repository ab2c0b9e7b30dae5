package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_KeepsFieldOrder(t *testing.T) {
	r := RecordOf("id", 1, "name", "Cairo", "country", "EG")

	assert.Equal(t, []string{"id", "name", "country"}, r.Fields())
	assert.Equal(t, []any{1, "Cairo", "EG"}, r.Values())

	r.Set("name", "Giza")
	assert.Equal(t, []string{"id", "name", "country"}, r.Fields(), "overwriting must not move the field")

	r.Set("population", 100)
	assert.Equal(t, "population", r.Fields()[3])
}

func TestRecord_Rename(t *testing.T) {
	r := RecordOf("CityID", 7, "CityName", "Tanta")

	r.Rename("CityID", "id")
	assert.Equal(t, []string{"id", "CityName"}, r.Fields())
	assert.Equal(t, 7, r.Value("id"))
	assert.False(t, r.Has("CityID"))

	// Absent source is a no-op.
	r.Rename("missing", "other")
	assert.Equal(t, 2, r.Len())

	// Existing target is replaced.
	r.Set("name", "old")
	r.Rename("CityName", "name")
	assert.Equal(t, []string{"id", "name"}, r.Fields())
	assert.Equal(t, "Tanta", r.Value("name"))
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	r := RecordOf("id", 1)
	c := r.Clone()
	c.Set("id", 2)
	c.Set("extra", true)

	assert.Equal(t, 1, r.Value("id"))
	assert.Equal(t, 1, r.Len())
}

func TestRecord_Delete(t *testing.T) {
	r := RecordOf("a", 1, "b", 2, "c", 3)
	r.Delete("b")
	r.Delete("zzz")

	assert.Equal(t, []string{"a", "c"}, r.Fields())
	assert.Equal(t, []any{1, 3}, r.Values())
}

func TestRecord_String(t *testing.T) {
	r := RecordOf("id", 1.0, "name", nil)
	assert.Equal(t, "{id=1, name=null}", r.String())
}

func TestRecordOf_PanicsOnOddArgs(t *testing.T) {
	assert.Panics(t, func() { RecordOf("id") })
	assert.Panics(t, func() { RecordOf(1, "x") })
}

func TestNewRecord_PadsMissingValues(t *testing.T) {
	r := NewRecord([]string{"a", "b"}, []any{"x"})
	assert.True(t, r.Has("b"))
	assert.True(t, r.IsNull("b"))
}

func TestIsNull(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{"", true},
		{"   ", true},
		{math.NaN(), true},
		{"x", false},
		{0, false},
		{0.0, false},
		{time.Time{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNull(tt.v), "IsNull(%#v)", tt.v)
	}
}

func TestKeyString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "1", KeyString(1))
	assert.Equal(t, "1", KeyString(int64(1)))
	assert.Equal(t, "1", KeyString(1.0))
	assert.Equal(t, "1.5", KeyString(1.5))
	assert.Equal(t, "abc", KeyString("  abc "))
	assert.Equal(t, "2024-03-01T12:00:00Z", KeyString(ts))
	assert.Equal(t, "true", KeyString(true))
}

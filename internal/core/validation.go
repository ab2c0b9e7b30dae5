package core

// validation.go provides the gate every record set passes before mapping.
//
// Validation happens at three levels:
//  1. Schema: every required field must be a declared column
//  2. Nulls: required fields must hold a value in every record, unless the
//     profile routes nulls in that field to the Mapper's drop-null filter
//  3. Uniqueness: the profile's unique key must not repeat
//
// Validate never mutates its input. Diagnostics are ordered the same way.

import (
	"fmt"
	"strings"
)

// maxDuplicateSamples bounds how many duplicate key values a diagnostic lists.
const maxDuplicateSamples = 5

// Validate checks a record set against an entity profile and returns the
// verdict with human-readable diagnostics.
func Validate(set RecordSet, profile EntityProfile) (bool, []string) {
	var diags []string

	if len(set.Records) == 0 {
		return false, []string{fmt.Sprintf("record set for %s is empty", profile.Name)}
	}

	for _, field := range profile.RequiredFields {
		if !set.HasColumn(field) {
			diags = append(diags, fmt.Sprintf("required field %q not found in %s data", field, profile.Name))
			continue
		}
		if profile.DropsNull(field) {
			continue
		}
		if n := countNulls(set.Records, field); n > 0 {
			diags = append(diags, fmt.Sprintf("found %d null value(s) in required field %q", n, field))
		}
	}

	if profile.UniqueKey != "" && set.HasColumn(profile.UniqueKey) {
		if dups, total := DuplicateKeys(set.Records, profile.UniqueKey); total > 0 {
			sample := dups
			suffix := ""
			if len(sample) > maxDuplicateSamples {
				sample = sample[:maxDuplicateSamples]
				suffix = "..."
			}
			diags = append(diags, fmt.Sprintf("found %d duplicate value(s) for key %q: [%s]%s",
				total, profile.UniqueKey, strings.Join(sample, ", "), suffix))
		}
	}

	return len(diags) == 0, diags
}

func countNulls(records []Record, field string) int {
	n := 0
	for _, r := range records {
		if r.IsNull(field) {
			n++
		}
	}
	return n
}

// DuplicateKeys returns the repeated values of field in first-repeat order
// (each value listed once) and the number of records that repeat an earlier
// key. Null keys are ignored.
func DuplicateKeys(records []Record, field string) ([]string, int) {
	seen := make(map[string]int, len(records))
	var values []string
	total := 0
	for _, r := range records {
		v := r.Value(field)
		if IsNull(v) {
			continue
		}
		key := KeyString(v)
		seen[key]++
		if seen[key] == 2 {
			values = append(values, key)
		}
		if seen[key] > 1 {
			total++
		}
	}
	return values, total
}

// DedupeKeepFirst returns a new slice without records whose key value
// repeats an earlier record, and the number removed. Records with a null
// key are kept.
func DedupeKeepFirst(records []Record, field string) ([]Record, int) {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		v := r.Value(field)
		if !IsNull(v) {
			key := KeyString(v)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}

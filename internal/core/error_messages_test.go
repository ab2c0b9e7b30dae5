package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "run in progress",
			err:      fmt.Errorf("start run: %w", ErrRunInProgress),
			wantCode: "RUN001",
		},
		{
			name:     "unknown group",
			err:      fmt.Errorf("%w: billing", ErrUnknownGroup),
			wantCode: "RUN002",
		},
		{
			name:     "missing source",
			err:      fmt.Errorf("cities.xlsx: %w", ErrSourceNotFound),
			wantCode: "SRC001",
		},
		{
			name:     "unreadable source",
			err:      &SourceError{Entity: "cities", Source: "cities.xlsx", Err: errors.New("zip: not a valid zip file")},
			wantCode: "SRC002",
		},
		{
			name:     "mapping defect",
			err:      &MappingError{Entity: "cities", Err: errors.New("conflict key is required")},
			wantCode: "MAP001",
		},
		{
			name:     "connection refused",
			err:      &ConnectionError{Attempts: 3, Err: errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")},
			wantCode: "CONN001",
		},
		{
			name:     "access denied",
			err:      &ConnectionError{Attempts: 1, Err: errors.New("Error 1045 (28000): Access denied for user 'root'@'localhost'")},
			wantCode: "CONN002",
		},
		{
			name:     "connection error without known cause",
			err:      &ConnectionError{Attempts: 3, Err: errors.New("bad handshake")},
			wantCode: "CONN003",
		},
		{
			name:     "empty record set",
			err:      &ValidationError{Entity: "cities", Diagnostics: []string{"record set for cities is empty"}},
			wantCode: "VAL001",
		},
		{
			name:     "missing required field",
			err:      &ValidationError{Entity: "cities", Diagnostics: []string{`required field "id" not found in cities data`}},
			wantCode: "VAL002",
		},
		{
			name:     "null required values",
			err:      &ValidationError{Entity: "cities", Diagnostics: []string{`found 2 null value(s) in required field "id"`}},
			wantCode: "VAL003",
		},
		{
			name:     "duplicate keys",
			err:      &ValidationError{Entity: "cities", Diagnostics: []string{`found 1 duplicate value(s) for key "id": [1]`}},
			wantCode: "VAL004",
		},
		{
			name:     "mysql duplicate entry",
			err:      &PersistenceError{Entity: "cities", Table: "city", Err: errors.New("Error 1062 (23000): Duplicate entry 'x' for key 'name'")},
			wantCode: "DB001",
		},
		{
			name:     "postgres unique violation",
			err:      errors.New("ERROR: duplicate key value violates unique constraint \"city_name_key\""),
			wantCode: "DB001",
		},
		{
			name:     "foreign key",
			err:      errors.New("Error 1452: Cannot add or update a child row: a foreign key constraint fails"),
			wantCode: "DB002",
		},
		{
			name:     "data too long",
			err:      errors.New("Error 1406 (22001): Data too long for column 'phone' at row 1"),
			wantCode: "DB003",
		},
		{
			name:     "postgres value too long",
			err:      errors.New("ERROR: value too long for type character varying(20)"),
			wantCode: "DB003",
		},
		{
			name:     "deadlock",
			err:      errors.New("Error 1213: Deadlock found when trying to get lock"),
			wantCode: "DB004",
		},
		{
			name:     "timeout",
			err:      errors.New("context deadline exceeded"),
			wantCode: "DB005",
		},
		{
			name:     "missing mysql table",
			err:      errors.New("Error 1146 (42S02): Table 'crm.city' doesn't exist"),
			wantCode: "DB006",
		},
		{
			name:     "missing sqlite table",
			err:      errors.New("SQL logic error: no such table: city (1)"),
			wantCode: "DB006",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("something weird happened"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Action == "" {
				t.Error("MapError() should always provide an action")
			}
		})
	}
}

func TestMapError_CaseInsensitive(t *testing.T) {
	variants := []string{
		"DEADLOCK detected",
		"Deadlock detected",
		"deadlock detected",
	}

	for _, v := range variants {
		got := MapError(errors.New(v))
		if got.Code != "DB004" {
			t.Errorf("MapError(%q) code = %q, want DB004", v, got.Code)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrRunInProgress)
	want := "An import run is already in progress (Code: RUN001). Wait for the current run to finish and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("something weird happened"), false},
		{errors.New("no such table: city"), true},
		{&MappingError{Entity: "x", Err: errors.New("bad")}, true},
	}

	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

package core

import (
	"math"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// CleanNumber Tests
// ----------------------------------------------------------------------------

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"positive integer", "123", "123"},
		{"negative integer", "-456", "-456"},
		{"decimal", "123.45", "123.45"},
		{"leading decimal point", ".99", ".99"},
		{"surrounding whitespace", "  42  ", "42"},
		{"dollar sign", "$1,234.56", "1234.56"},
		{"euro sign", "€99", "99"},
		{"pound sign", "£100", "100"},
		{"accounting negative", "(1,000.00)", "-1000.00"},
		{"scientific notation", "1.5e3", "1.5e3"},
		{"empty", "", ""},
		{"letters", "abc", ""},
		{"mixed", "12abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanNumber(tt.input); got != tt.want {
				t.Errorf("CleanNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToInt / ToFloat Tests
// ----------------------------------------------------------------------------

func TestToInt(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    int64
		wantErr bool
	}{
		{"string integer", "42", 42, false},
		{"string with spaces", " 7 ", 7, false},
		{"float string", "3.0", 3, false},
		{"float string truncates", "3.9", 3, false},
		{"thousands separator", "1,000", 1000, false},
		{"excel formula", `="0012"`, 12, false},
		{"float64", 5.0, 5, false},
		{"int", 9, 9, false},
		{"int64", int64(11), 11, false},
		{"nil", nil, 0, true},
		{"blank", "  ", 0, true},
		{"garbage", "twelve", 0, true},
		{"min int64 string", "-9223372036854775808", math.MinInt64, false},
		{"string just past max int64", "9223372036854775808", 0, true},
		{"huge float string", "1e20", 0, true},
		{"huge float64", 1e20, 0, true},
		{"float64 two to the 63", float64(1<<62) * 2, 0, true},
		{"float64 min int64", float64(math.MinInt64), math.MinInt64, false},
		{"negative huge float64", -1e19, 0, true},
		{"NaN", math.NaN(), 0, true},
		{"infinity", math.Inf(1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToInt(%#v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ToInt(%#v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    float64
		wantErr bool
	}{
		{"string", "2.5", 2.5, false},
		{"currency", "$1,234.50", 1234.5, false},
		{"negative accounting", "(2.5)", -2.5, false},
		{"int", 3, 3, false},
		{"float64", 1.25, 1.25, false},
		{"nil", nil, 0, true},
		{"garbage", "n/a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToFloat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToFloat(%#v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ToFloat(%#v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToTimestamp Tests
// ----------------------------------------------------------------------------

func TestToTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    time.Time
		wantErr bool
	}{
		{"iso date", "2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"iso datetime", "2024-01-15 08:30:00", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), false},
		{"rfc3339", "2024-01-15T08:30:00Z", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), false},
		{"us date", "1/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"us datetime", "1/15/2024 14:05", time.Date(2024, 1, 15, 14, 5, 0, 0, time.UTC), false},
		{"two digit year", "1/15/24", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"two digit year previous century", "1/15/95", time.Date(1995, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"excel serial float", 45306.0, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"time value", time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"nil", nil, time.Time{}, true},
		{"garbage", "not a date", time.Time{}, true},
		{"serial out of range", -5.0, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToTimestamp(%#v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ToTimestamp(%#v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToText / Truncate / CleanCell Tests
// ----------------------------------------------------------------------------

func TestToText(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{"  hello ", "hello"},
		{1.0, "1"},
		{2.5, "2.5"},
		{int64(12), "12"},
		{true, "true"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02 03:04:05"},
	}

	for _, tt := range tests {
		got, err := ToText(tt.input)
		if err != nil {
			t.Fatalf("ToText(%#v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ToText(%#v) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if _, err := ToText(nil); err == nil {
		t.Error("ToText(nil) should fail")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello"},
		{"héllo", 2, "hé"},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  value  ", "value"},
		{" value ", "value"},
		{`="00123"`, "00123"},
		{"=42", "42"},
		{`"quoted"`, "quoted"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

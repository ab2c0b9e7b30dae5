package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/bulkload/internal/core"
)

func writeWorkbook(t *testing.T, dir, name string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, name)))
}

func TestReadXLSX(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "city_id.xlsx", [][]any{
		{"id", "areas", "id_governorates"},
		{1, "Nasr City", 1},
		{2, "", 1},
		{nil, nil, nil},
		{3, "Dokki"},
	})

	set, err := NewDir(dir).Read(context.Background(), "city_id.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "areas", "id_governorates"}, set.Columns)
	require.Equal(t, 3, set.Len())

	first := set.Records[0]
	assert.Equal(t, "1", first.Value("id"))
	assert.Equal(t, "Nasr City", first.Value("areas"))

	assert.True(t, set.Records[1].IsNull("areas"))
	assert.True(t, set.Records[2].IsNull("id_governorates"))

	id, err := core.ToInt(set.Records[2].Value("id"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestReadXLSXDatesAreSerials(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "created_at"))
	require.NoError(t, f.SetCellValue(sheet, "A2", 45306))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "A2", "A2", style))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "tickets.xlsx")))
	require.NoError(t, f.Close())

	set, err := NewDir(dir).Read(context.Background(), "tickets.xlsx")
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	ts, err := core.ToTimestamp(set.Records[0].Value("created_at"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", ts.Format("2006-01-02"))
}

func TestReadMissingSource(t *testing.T) {
	_, err := NewDir(t.TempDir()).Read(context.Background(), "governorate.xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSourceNotFound))
}

func TestReadUnreadableSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.xlsx"), []byte("not a zip"), 0o644))

	_, err := NewDir(dir).Read(context.Background(), "broken.xlsx")
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrSourceNotFound))
}

func TestReadUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}"), 0o644))

	_, err := NewDir(dir).Read(context.Background(), "data.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestPathStaysInsideRoot(t *testing.T) {
	d := NewDir("/data")
	assert.Equal(t, "/data/passwd", d.Path("../../etc/../passwd"))
	assert.Equal(t, "/data/sub/a.csv", d.Path("sub/a.csv"))
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	content := "\xEF\xBB\xBFid,name,name,\n1,Cairo,x,\n,,,\n2,Giza\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "governorate.csv"), []byte(content), 0o644))

	set, err := NewDir(dir).Read(context.Background(), "governorate.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "name.1", "Unnamed: 3"}, set.Columns)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "Cairo", set.Records[0].Value("name"))
	assert.Equal(t, "x", set.Records[0].Value("name.1"))
	assert.Nil(t, set.Records[1].Value("name.1"))
}

func TestParseCSVHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parseCSV(ctx, strings.NewReader("id\n1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBOMSkipper(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "a,b"},
		{"without BOM", []byte("a,b"), "a,b"},
		{"empty", []byte{}, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial BOM", []byte{0xEF, 0xBB, 'a'}, string([]byte{0xEF, 0xBB, 'a'})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newBOMSkipper(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("hello"), "hello"},
		{"multibyte", []byte("مدينة نصر"), "مدينة نصر"},
		{"invalid byte", []byte{'h', 'e', 0x80, 'l', 'o'}, "he?lo"},
		{"truncated at EOF", []byte{'a', 0xD9}, "a?"},
		{"empty", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newUTF8Sanitizer(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestUTF8SanitizerSplitReads(t *testing.T) {
	input := "مدينة نصر, cairo"
	r := newUTF8Sanitizer(iotest.OneByteReader(strings.NewReader(input)))

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

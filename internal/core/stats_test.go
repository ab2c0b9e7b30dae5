package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportStats_Success(t *testing.T) {
	assert.True(t, ImportStats{EntitiesAttempted: 2, EntitiesSucceeded: 2}.Success())
	assert.True(t, ImportStats{}.Success(), "a run with nothing attempted has no failures")
	assert.False(t, ImportStats{EntitiesAttempted: 2, EntitiesSucceeded: 1, EntitiesFailed: 1}.Success())
}

func TestImportStats_AveragePerRecord(t *testing.T) {
	s := ImportStats{TotalRecords: 4, Duration: 2 * time.Second}
	assert.Equal(t, 500*time.Millisecond, s.AveragePerRecord())
	assert.Zero(t, ImportStats{Duration: time.Second}.AveragePerRecord())
}

func TestImportStats_JSON(t *testing.T) {
	s := ImportStats{
		EntitiesAttempted: 1,
		TotalRecords:      10,
		StartTime:         fixedNow,
		EndTime:           fixedNow.Add(5 * time.Second),
		Duration:          5 * time.Second,
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 5.0, got["duration_seconds"])
	assert.Equal(t, 0.5, got["avg_seconds_per_record"])
	assert.Equal(t, 10.0, got["total_records"])
	assert.Equal(t, "2024-06-01T09:00:00Z", got["start_time"])
	assert.NotContains(t, got, "Duration")
}

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	report := &RunReport{
		RunID:   "run-1",
		Phase:   PhaseDone,
		Success: true,
		Stats:   ImportStats{StartTime: fixedNow},
		Entities: []EntityResult{
			{Name: "cities", Table: "city", Status: EntitySucceeded, Read: 3, Applied: 3},
		},
	}

	path, err := WriteReport(dir, report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "import_stats_20240601_090000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got RunReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, PhaseDone, got.Phase)
	require.Len(t, got.Entities, 1)
	assert.Equal(t, 3, got.Entities[0].Applied)
}

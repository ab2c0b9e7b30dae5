package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = RecordOf("id", i)
	}
	return out
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, size     int
		wantBatches int
		wantLast    int
	}{
		{0, 10, 0, 0},
		{1, 10, 1, 1},
		{10, 10, 1, 10},
		{11, 10, 2, 1},
		{25, 10, 3, 5},
		{5, 1, 5, 1},
	}

	for _, tt := range tests {
		records := numbered(tt.n)
		batches := Partition(records, tt.size)

		require.Len(t, batches, tt.wantBatches, "n=%d size=%d", tt.n, tt.size)
		assert.Equal(t, BatchCount(tt.n, tt.size), len(batches))
		if tt.wantBatches == 0 {
			continue
		}
		assert.Len(t, batches[len(batches)-1], tt.wantLast)

		// Concatenation reconstructs the input order.
		var joined []Record
		for _, b := range batches {
			assert.LessOrEqual(t, len(b), tt.size)
			joined = append(joined, b...)
		}
		assert.Equal(t, records, joined)
	}
}

func TestPartition_DefaultSize(t *testing.T) {
	batches := Partition(numbered(2500), 0)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], DefaultBatchSize)
}

func TestPartition_BatchesDoNotAlias(t *testing.T) {
	records := numbered(4)
	batches := Partition(records, 2)

	// Appending to the first batch must not overwrite the second.
	_ = append(batches[0], RecordOf("id", 99))
	assert.Equal(t, 2, batches[1][0].Value("id"))
}

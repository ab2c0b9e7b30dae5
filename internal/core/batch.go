package core

// DefaultBatchSize is the number of records committed per transaction.
const DefaultBatchSize = 1000

// Partition splits records into contiguous batches of at most size records.
// Batches share the input's backing array; concatenated in order they
// reconstruct the input exactly. A size below 1 uses DefaultBatchSize.
func Partition(records []Record, size int) [][]Record {
	if size < 1 {
		size = DefaultBatchSize
	}
	if len(records) == 0 {
		return nil
	}

	batches := make([][]Record, 0, BatchCount(len(records), size))
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end:end])
	}
	return batches
}

// BatchCount returns ceil(n/size).
func BatchCount(n, size int) int {
	if size < 1 {
		size = DefaultBatchSize
	}
	return (n + size - 1) / size
}

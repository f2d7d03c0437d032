package downloader

// PlanChunks splits [existing, total) into contiguous chunkSize ranges.
// The last range is clamped to total-1. Nothing is planned when the file
// is already complete.
func PlanChunks(total, existing, chunkSize uint64) []ChunkRange {
	if existing >= total || chunkSize == 0 {
		return nil
	}
	count := (total - existing + chunkSize - 1) / chunkSize
	ranges := make([]ChunkRange, 0, count)
	for i := uint64(0); i < count; i++ {
		start := existing + i*chunkSize
		end := min(start+chunkSize-1, total-1)
		ranges = append(ranges, ChunkRange{ID: int(i), Start: start, End: end})
	}
	return ranges
}

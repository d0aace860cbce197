package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteTrackerRecordAndCommit(t *testing.T) {
	tr := NewWriteTracker(100)
	tr.RecordWrite("fh1", 0, 4096, WriteStabilityUnstable)
	assert.True(t, tr.HasPendingWrites("fh1"))

	verf := tr.Commit("fh1")
	assert.Equal(t, uint64(100), verf)
	assert.False(t, tr.HasPendingWrites("fh1"))
}

func TestWriteTrackerPendingCount(t *testing.T) {
	tr := NewWriteTracker(100)
	tr.RecordWrite("fh1", 0, 4096, WriteStabilityUnstable)
	tr.RecordWrite("fh1", 4096, 4096, WriteStabilityUnstable)

	assert.Equal(t, 2, tr.PendingCount("fh1"))
	assert.Equal(t, 0, tr.PendingCount("fh999"))
}

func TestWriteTrackerTotalPending(t *testing.T) {
	tr := NewWriteTracker(100)
	tr.RecordWrite("fh1", 0, 4096, WriteStabilityUnstable)
	tr.RecordWrite("fh2", 0, 8192, WriteStabilityDataSync)

	assert.Equal(t, 2, tr.TotalPending())
}

func TestWriteTrackerWriteVerf(t *testing.T) {
	tr := NewWriteTracker(99999)
	assert.Equal(t, uint64(99999), tr.WriteVerf())
}

func TestWriteTrackerRemoveFile(t *testing.T) {
	tr := NewWriteTracker(100)
	tr.RecordWrite("fh1", 0, 4096, WriteStabilityUnstable)
	tr.RecordWrite("fh2", 0, 8192, WriteStabilityDataSync)

	tr.RemoveFile("fh1")

	assert.Empty(t, tr.PendingWrites("fh1"))
	assert.NotEmpty(t, tr.PendingWrites("fh2"))
	assert.Equal(t, 1, tr.TotalPending())
}

func TestWriteStabilityOrdering(t *testing.T) {
	assert.Less(t, int(WriteStabilityUnstable), int(WriteStabilityDataSync))
	assert.Less(t, int(WriteStabilityDataSync), int(WriteStabilityFileSync))
}

func TestWriteTrackerPendingWriteFields(t *testing.T) {
	tr := NewWriteTracker(100)
	tr.RecordWrite("fh42", 1000, 2048, WriteStabilityFileSync)

	writes := tr.PendingWrites("fh42")
	require := writes[0]
	assert.Equal(t, "fh42", require.FhKey)
	assert.Equal(t, uint64(1000), require.Offset)
	assert.Equal(t, uint32(2048), require.Count)
	assert.Equal(t, WriteStabilityFileSync, require.Stability)
	assert.Equal(t, uint64(100), require.Verf)
}

func TestWriteTrackerCommitAll(t *testing.T) {
	tr := NewWriteTracker(100)
	tr.RecordWrite("fh1", 0, 4096, WriteStabilityUnstable)
	tr.RecordWrite("fh2", 0, 8192, WriteStabilityDataSync)

	verf := tr.CommitAll()
	assert.Equal(t, uint64(100), verf)
	assert.Equal(t, 0, tr.TotalPending())
}

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupNewThenDuplicate(t *testing.T) {
	tr := NewDedupTracker(DefaultDedupConfig())
	outcome, _ := tr.Check(1)
	assert.Equal(t, DedupNew, outcome)
	outcome, hits := tr.Check(1)
	assert.Equal(t, DedupDuplicate, outcome)
	assert.Equal(t, uint64(2), hits)
}

func TestDedupExpires(t *testing.T) {
	tr := NewDedupTracker(DedupConfig{MaxEntries: 10, TTLMillis: 100})
	tr.Check(1)
	tr.Advance(150)
	outcome, _ := tr.Check(1)
	assert.Equal(t, DedupExpired, outcome)
	assert.Equal(t, 0, tr.Len())
}

func TestDedupMaxEntriesEviction(t *testing.T) {
	tr := NewDedupTracker(DedupConfig{MaxEntries: 3, TTLMillis: 1_000_000})
	tr.Check(1)
	tr.Check(2)
	tr.Check(3)
	assert.Equal(t, 3, tr.Len())
	tr.Check(4)
	assert.Equal(t, 3, tr.Len())
}

func TestDedupStats(t *testing.T) {
	tr := NewDedupTracker(DefaultDedupConfig())
	tr.Check(1)
	tr.Check(1)
	tr.Check(2)
	stats := tr.Stats()
	assert.Equal(t, uint64(3), stats.TotalChecks)
	assert.Equal(t, uint64(1), stats.TotalDuplicates)
	assert.Equal(t, 2, stats.CurrentEntries)
}

func TestDedupEvictExpired(t *testing.T) {
	tr := NewDedupTracker(DedupConfig{MaxEntries: 10, TTLMillis: 50})
	tr.Check(1)
	tr.Check(2)
	tr.Advance(100)
	removed := tr.EvictExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, tr.Len())
}

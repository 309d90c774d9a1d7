package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIntervals() []MetadataInterval {
	return []MetadataInterval{
		{StationID: 3, ValidFrom: day(1993, 4, 29), ValidTo: dayEnd(1995, 12, 31)},
		{StationID: 3, ValidFrom: day(1996, 1, 1), ValidTo: dayEnd(1999, 12, 31)},
	}
}

func TestFindInterval(t *testing.T) {
	intervals := testIntervals()

	tests := []struct {
		name      string
		ts        time.Time
		wantIdx   int
		wantFound bool
	}{
		{"inside first", time.Date(1994, 6, 1, 12, 0, 0, 0, time.UTC), 0, true},
		{"first instant of coverage", day(1993, 4, 29), 0, true},
		{"last instant of first interval", dayEnd(1995, 12, 31), 0, true},
		{"first instant of second interval", day(1996, 1, 1), 1, true},
		{"last instant of coverage", dayEnd(1999, 12, 31), 1, true},
		{"before all coverage", time.Date(1993, 4, 28, 10, 30, 0, 0, time.UTC), 0, false},
		{"after all coverage", day(2000, 1, 1), 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, found := FindInterval(intervals, tt.ts)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantIdx, idx)
		})
	}

	t.Run("empty interval list", func(t *testing.T) {
		idx, found := FindInterval(nil, day(1995, 1, 1))
		assert.False(t, found)
		assert.Equal(t, 0, idx)
	})
}

func TestGapTracker(t *testing.T) {
	t.Run("accumulates true min and max regardless of order", func(t *testing.T) {
		tr := NewGapTracker()
		tr.Observe(0, time.Date(1993, 4, 28, 12, 0, 0, 0, time.UTC))
		tr.Observe(0, time.Date(1993, 4, 28, 10, 30, 0, 0, time.UTC))
		tr.Observe(0, time.Date(1993, 4, 28, 23, 50, 0, 0, time.UTC))

		gaps := tr.Gaps()
		require.Len(t, gaps, 1)
		assert.Equal(t, 0, gaps[0].Position)
		assert.True(t, gaps[0].First.Equal(time.Date(1993, 4, 28, 10, 30, 0, 0, time.UTC)))
		assert.True(t, gaps[0].Last.Equal(time.Date(1993, 4, 28, 23, 50, 0, 0, time.UTC)))
	})

	t.Run("separate gaps per position", func(t *testing.T) {
		tr := NewGapTracker()
		tr.Observe(2, day(2000, 1, 1))
		tr.Observe(0, day(1993, 4, 28))
		tr.Observe(2, day(2000, 3, 1))

		gaps := tr.Gaps()
		require.Len(t, gaps, 2)
		// Ordered by first timestamp.
		assert.Equal(t, 0, gaps[0].Position)
		assert.Equal(t, 2, gaps[1].Position)
		assert.True(t, gaps[1].Last.Equal(day(2000, 3, 1)))
	})

	t.Run("empty tracker", func(t *testing.T) {
		tr := NewGapTracker()
		assert.True(t, tr.Empty())
		assert.Empty(t, tr.Gaps())
	})
}

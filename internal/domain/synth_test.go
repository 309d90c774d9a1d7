package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup() IdentityLookup {
	return IdentityLookup{
		3: {Name: "Aachen", State: "Nordrhein-Westfalen"},
	}
}

func TestSynthesizeIntervals(t *testing.T) {
	prov := testProvenance()

	t.Run("pre-coverage gap gets one day-aligned identity interval", func(t *testing.T) {
		// Raw data starts 1993-04-28 11:30 UTC, first metadata interval
		// starts 1993-04-29 00:00.
		intervals := []MetadataInterval{
			{StationID: 3, ValidFrom: day(1993, 4, 29), ValidTo: dayEnd(1999, 12, 31)},
		}
		gaps := []Gap{{
			Position: 0,
			First:    time.Date(1993, 4, 28, 11, 30, 0, 0, time.UTC),
			Last:     time.Date(1993, 4, 28, 23, 50, 0, 0, time.UTC),
		}}

		synth, err := SynthesizeIntervals(3, gaps, intervals, testLookup(), prov)
		require.NoError(t, err)
		require.Len(t, synth, 1)

		mi := synth[0]
		assert.True(t, mi.ValidFrom.Equal(day(1993, 4, 28)))
		assert.True(t, mi.ValidTo.Equal(dayEnd(1993, 4, 28)))
		assert.True(t, mi.Synthesized)
		require.NotNil(t, mi.StationName)
		assert.Equal(t, "Aachen", *mi.StationName)
		require.NotNil(t, mi.State)
		assert.Equal(t, "Nordrhein-Westfalen", *mi.State)

		// Every non-identity attribute stays null.
		assert.Nil(t, mi.Operator)
		assert.Nil(t, mi.Latitude)
		assert.Nil(t, mi.Longitude)
		assert.Nil(t, mi.Elevation)
		for _, p := range Parameters {
			assert.Nil(t, mi.Parameters.Get(p))
			assert.Nil(t, mi.Instruments.Get(p))
		}

		// Re-applying the matcher resolves the formerly orphaned range.
		full := AppendIntervals(intervals, synth)
		idx, found := FindInterval(full, gaps[0].First)
		require.True(t, found)
		assert.True(t, full[idx].Synthesized)
	})

	t.Run("day alignment clamps against a neighbouring real interval", func(t *testing.T) {
		// The gap day overlaps the end of real coverage; the synthesized
		// interval must start right after it, not at midnight.
		intervals := []MetadataInterval{
			{StationID: 3, ValidFrom: day(1993, 1, 1), ValidTo: time.Date(2000, 3, 15, 11, 59, 59, 0, time.UTC)},
		}
		gaps := []Gap{{
			Position: 1,
			First:    time.Date(2000, 3, 15, 12, 0, 0, 0, time.UTC),
			Last:     time.Date(2000, 3, 16, 8, 0, 0, 0, time.UTC),
		}}

		synth, err := SynthesizeIntervals(3, gaps, intervals, testLookup(), prov)
		require.NoError(t, err)
		require.Len(t, synth, 1)

		assert.True(t, synth[0].ValidFrom.Equal(time.Date(2000, 3, 15, 12, 0, 0, 0, time.UTC)))
		assert.True(t, synth[0].ValidTo.Equal(dayEnd(2000, 3, 16)))
	})

	t.Run("multiple gaps yield one interval each", func(t *testing.T) {
		intervals := testIntervals()
		gaps := []Gap{
			{Position: 0, First: time.Date(1993, 4, 28, 11, 30, 0, 0, time.UTC), Last: time.Date(1993, 4, 28, 23, 50, 0, 0, time.UTC)},
			{Position: 2, First: day(2000, 1, 1), Last: time.Date(2000, 2, 1, 10, 0, 0, 0, time.UTC)},
		}

		synth, err := SynthesizeIntervals(3, gaps, intervals, testLookup(), prov)
		require.NoError(t, err)
		require.Len(t, synth, 2)
		assert.True(t, synth[1].ValidFrom.Equal(day(2000, 1, 1)))
		assert.True(t, synth[1].ValidTo.Equal(dayEnd(2000, 2, 1)))
	})

	t.Run("station absent from the lookup is fatal", func(t *testing.T) {
		gaps := []Gap{{Position: 0, First: day(1993, 4, 28), Last: day(1993, 4, 28)}}
		_, err := SynthesizeIntervals(999, gaps, nil, testLookup(), prov)

		var unknown *UnknownStationError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, 999, unknown.StationID)
	})

	t.Run("no gaps, no lookup requirement", func(t *testing.T) {
		synth, err := SynthesizeIntervals(999, nil, nil, testLookup(), prov)
		require.NoError(t, err)
		assert.Empty(t, synth)
	})
}

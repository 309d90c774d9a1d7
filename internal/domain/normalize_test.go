package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testSource() SourceContext {
	return SourceContext{
		Filename:    "produkt_zehn_min_tu_19930428_19991231_00003.txt",
		ContentHash: "cafebabe",
		StationID:   3,
	}
}

// rowFields builds a tokenized product row: station, timestamp, quality,
// PP_10, TT_10, TM5_10, RF_10, TD_10.
func rowFields(ts string, fields ...string) []string {
	out := []string{"3", ts, "1"}
	out = append(out, fields...)
	return out
}

func TestNormalizeRow(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(frozenNow))
	defer SetClock(nil)

	intervals := testIntervals()

	t.Run("full row", func(t *testing.T) {
		n := NewNormalizer(intervals)
		row := RawRow{Line: 4, Fields: rowFields("199405011230", "990.2", "24.9", "23.1", "81.0", "21.5")}

		obs, kept, err := n.NormalizeRow(row, testSource())
		require.NoError(t, err)
		assert.True(t, kept)

		assert.Equal(t, 3, obs.StationID)
		assert.Equal(t, "199405011230", obs.TimestampRaw)
		assert.Equal(t, time.Date(1994, 5, 1, 11, 30, 0, 0, time.UTC), obs.TimestampUTC)
		require.NotNil(t, obs.QualityLevel)
		assert.Equal(t, 1, *obs.QualityLevel)
		require.NotNil(t, obs.Values.Pressure)
		assert.Equal(t, 990.2, *obs.Values.Pressure)
		require.NotNil(t, obs.Values.AirTemp2m)
		assert.Equal(t, 24.9, *obs.Values.AirTemp2m)
		assert.True(t, obs.MetadataMatched)

		assert.Equal(t, testSource().Filename, obs.Provenance.SourceArchive)
		assert.Equal(t, "cafebabe", obs.Provenance.ContentHash)
		assert.Equal(t, SchemaVersion, obs.Provenance.SchemaVersion)
		assert.True(t, obs.Provenance.IngestedAt.Equal(frozenNow))
	})

	t.Run("sentinel values become null", func(t *testing.T) {
		n := NewNormalizer(intervals)
		row := RawRow{Line: 4, Fields: rowFields("199405011230", "-999", "-999.0", "23.1", "", "21.5")}

		obs, _, err := n.NormalizeRow(row, testSource())
		require.NoError(t, err)

		assert.Nil(t, obs.Values.Pressure, "-999 must not survive as a value")
		assert.Nil(t, obs.Values.AirTemp2m, "-999.0 must not survive as a value")
		assert.Nil(t, obs.Values.Humidity, "empty field is a missing reading")
		require.NotNil(t, obs.Values.AirTemp5cm)
		assert.Equal(t, 23.1, *obs.Values.AirTemp5cm)
		require.NotNil(t, obs.Values.DewPoint)
	})

	t.Run("orphan row is kept, flagged, and gap-tracked", func(t *testing.T) {
		n := NewNormalizer(intervals)
		row := RawRow{Line: 2, Fields: rowFields("199304281230", "-999", "24.9", "-999", "-999", "-999")}

		obs, kept, err := n.NormalizeRow(row, testSource())
		require.NoError(t, err)
		assert.True(t, kept, "orphan data is a normal outcome, not an error")
		assert.False(t, obs.MetadataMatched)

		gaps := n.Tracker().Gaps()
		require.Len(t, gaps, 1)
		assert.Equal(t, 0, gaps[0].Position)
		assert.True(t, gaps[0].First.Equal(time.Date(1993, 4, 28, 11, 30, 0, 0, time.UTC)))
	})

	t.Run("row shape mismatch", func(t *testing.T) {
		n := NewNormalizer(intervals)
		row := RawRow{Line: 17, Fields: []string{"3", "199405011230", "1", "990.2"}}

		_, _, err := n.NormalizeRow(row, testSource())

		var shape *RowShapeError
		require.ErrorAs(t, err, &shape)
		assert.Equal(t, 17, shape.Line)
		assert.Equal(t, ExpectedColumns, shape.Expected)
		assert.Equal(t, 4, shape.Actual)
		assert.Equal(t, testSource().Filename, shape.SourceFile)
	})

	t.Run("invalid quality code", func(t *testing.T) {
		for _, qn := range []string{"", "x", "1.5"} {
			n := NewNormalizer(intervals)
			fields := []string{"3", "199405011230", qn, "990.2", "24.9", "23.1", "81.0", "21.5"}

			_, _, err := n.NormalizeRow(RawRow{Line: 5, Fields: fields}, testSource())

			var invalid *InvalidQualityError
			require.ErrorAs(t, err, &invalid, "quality %q", qn)
			assert.Equal(t, 5, invalid.Line)
		}
	})

	t.Run("malformed timestamp carries source context", func(t *testing.T) {
		n := NewNormalizer(intervals)
		row := RawRow{Line: 9, Fields: rowFields("1994-05-01", "990.2", "24.9", "23.1", "81.0", "21.5")}

		_, _, err := n.NormalizeRow(row, testSource())

		var malformed *MalformedTimestampError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "1994-05-01", malformed.Raw)
		assert.Equal(t, 9, malformed.Line)
	})

	t.Run("identical duplicate dedupes silently", func(t *testing.T) {
		n := NewNormalizer(intervals)
		row := RawRow{Line: 4, Fields: rowFields("199405011230", "990.2", "24.9", "23.1", "81.0", "21.5")}

		first, kept, err := n.NormalizeRow(row, testSource())
		require.NoError(t, err)
		assert.True(t, kept)

		second, kept, err := n.NormalizeRow(RawRow{Line: 880, Fields: row.Fields}, testSource())
		require.NoError(t, err)
		assert.False(t, kept, "byte-identical re-read is not a conflict")
		assert.True(t, first.DataEqual(&second))
	})

	t.Run("conflicting duplicate is fatal", func(t *testing.T) {
		n := NewNormalizer(intervals)
		_, _, err := n.NormalizeRow(RawRow{Line: 4, Fields: rowFields("199405011230", "990.2", "24.9", "23.1", "81.0", "21.5")}, testSource())
		require.NoError(t, err)

		_, _, err = n.NormalizeRow(RawRow{Line: 5, Fields: rowFields("199405011230", "990.2", "25.3", "23.1", "81.0", "21.5")}, testSource())

		var conflict *DuplicateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 3, conflict.StationID)
		assert.True(t, conflict.TimestampUTC.Equal(time.Date(1994, 5, 1, 11, 30, 0, 0, time.UTC)))
		assert.Equal(t, 4, conflict.FirstLine)
		assert.Equal(t, 5, conflict.SecondLine)
		require.NotNil(t, conflict.First.Values.AirTemp2m)
		require.NotNil(t, conflict.Second.Values.AirTemp2m)
		assert.NotEqual(t, *conflict.First.Values.AirTemp2m, *conflict.Second.Values.AirTemp2m)
	})

	t.Run("station column must match the archive", func(t *testing.T) {
		n := NewNormalizer(intervals)
		fields := []string{"44", "199405011230", "1", "990.2", "24.9", "23.1", "81.0", "21.5"}

		_, _, err := n.NormalizeRow(RawRow{Line: 2, Fields: fields}, testSource())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "station column")
	})

	t.Run("unparseable reading is fatal", func(t *testing.T) {
		n := NewNormalizer(intervals)
		row := RawRow{Line: 3, Fields: rowFields("199405011230", "990.2", "24,9", "23.1", "81.0", "21.5")}

		_, _, err := n.NormalizeRow(row, testSource())
		require.Error(t, err)
		assert.Contains(t, err.Error(), fmt.Sprintf("parameter %s", ParamAirTemp2m))
	})
}

func TestNormalizeFileOrderIndependence(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(frozenNow))
	defer SetClock(nil)

	// Gap bounds use true min/max, so feeding rows out of order yields the
	// same gap as chronological order.
	rows := []RawRow{
		{Line: 2, Fields: rowFields("199304281130", "-999", "24.9", "-999", "-999", "-999")},
		{Line: 3, Fields: rowFields("199304282350", "-999", "20.1", "-999", "-999", "-999")},
		{Line: 4, Fields: rowFields("199304281500", "-999", "26.0", "-999", "-999", "-999")},
	}

	run := func(order []int) []Gap {
		n := NewNormalizer(testIntervals())
		for _, i := range order {
			_, _, err := n.NormalizeRow(rows[i], testSource())
			require.NoError(t, err)
		}
		return n.Tracker().Gaps()
	}

	forward := run([]int{0, 1, 2})
	shuffled := run([]int{2, 0, 1})

	require.Len(t, forward, 1)
	require.Len(t, shuffled, 1)
	assert.True(t, forward[0].First.Equal(shuffled[0].First))
	assert.True(t, forward[0].Last.Equal(shuffled[0].Last))
}

func TestParseReadingPrecision(t *testing.T) {
	// Values keep source precision; no rounding is applied.
	v, err := parseReading("  -0.4")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, -0.4, *v)

	s := strings.TrimSpace("-999")
	v, err = parseReading(s)
	require.NoError(t, err)
	assert.Nil(t, v)
}

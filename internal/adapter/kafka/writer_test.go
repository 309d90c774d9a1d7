package kafka

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
	"github.com/couchcryptid/dwd-archive-etl/internal/pipeline"
)

func testOutput() *pipeline.StationOutput {
	name := "Aachen"
	temp := 24.9
	obs := domain.Observation{
		StationID:       3,
		TimestampRaw:    "199304281130",
		TimestampUTC:    time.Date(1993, 4, 28, 10, 30, 0, 0, time.UTC),
		MetadataMatched: true,
	}
	obs.Values.AirTemp2m = &temp

	return &pipeline.StationOutput{
		StationID: 3,
		Intervals: []domain.MetadataInterval{{
			StationID:   3,
			ValidFrom:   time.Date(1993, 4, 28, 0, 0, 0, 0, time.UTC),
			ValidTo:     time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
			StationName: &name,
		}},
		Observations: []domain.Observation{obs},
		Aggregates: map[domain.Resolution][]domain.AggregateRecord{
			domain.ResolutionHour: {{
				StationID:   3,
				Parameter:   domain.ParamAirTemp2m,
				Resolution:  domain.ResolutionHour,
				PeriodStart: time.Date(1993, 4, 28, 10, 0, 0, 0, time.UTC),
				Count:       1,
			}},
		},
	}
}

func TestBuildMessages(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"}, "dwd-archive", slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	msgs, err := w.buildMessages(testOutput())
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, "dwd-archive-intervals", msgs[0].Topic)
	assert.Equal(t, "dwd-archive-records", msgs[1].Topic)
	assert.Equal(t, "dwd-archive-aggregates", msgs[2].Topic)

	for _, msg := range msgs {
		assert.Equal(t, []byte("3"), msg.Key)
		require.Len(t, msg.Headers, 1)
		assert.Equal(t, "schema_version", msg.Headers[0].Key)
		assert.Equal(t, []byte(domain.SchemaVersion), msg.Headers[0].Value)
	}

	assert.Contains(t, string(msgs[0].Value), `"station_name":"Aachen"`)
	assert.Contains(t, string(msgs[1].Value), `"TT_10":24.9`)
	assert.Contains(t, string(msgs[2].Value), `"count":1`)
}

func TestBuildMessagesEmptyStation(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"}, "dwd-archive", slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	msgs, err := w.buildMessages(&pipeline.StationOutput{StationID: 3})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

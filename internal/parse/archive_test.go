package parse

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
)

const productHeader = "STATIONS_ID;MESS_DATUM;QN;PP_10;TT_10;TM5_10;RF_10;TD_10;eor\n"

func writeArchiveFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestArchiveLoaderStations(t *testing.T) {
	dir := t.TempDir()
	writeArchiveFile(t, dir, "10minutenwerte_TU_00003_19930428_19991231_hist.txt", productHeader)
	writeArchiveFile(t, dir, "10minutenwerte_TU_00003_20000101_20091231_hist.txt", productHeader)
	writeArchiveFile(t, dir, "10minutenwerte_TU_00044_19930428_19991231_hist.txt", productHeader)
	writeArchiveFile(t, dir, "Metadaten_Geographie_00003.txt", "x")
	writeArchiveFile(t, dir, "notes.txt", "x")

	ids, err := NewArchiveLoader(dir).Stations()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 44}, ids)
}

func TestArchiveLoaderLoadProducts(t *testing.T) {
	dir := t.TempDir()
	first := productHeader + "   3;199304281130;  1;  990.3;  24.4;  29.8;  52.0;  13.9;eor\n"
	second := productHeader + "   3;200001010000;  3; 1002.9;   1.2;   0.4;  86.0;  -0.9;eor\n"
	writeArchiveFile(t, dir, "10minutenwerte_TU_00003_19930428_19991231_hist.txt", first)
	writeArchiveFile(t, dir, "10minutenwerte_TU_00003_20000101_20091231_hist.txt", second)

	products, err := NewArchiveLoader(dir).LoadProducts(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "10minutenwerte_TU_00003_19930428_19991231_hist.txt", products[0].Source.Filename)
	assert.Equal(t, 3, products[0].Source.StationID)
	assert.Len(t, products[0].Source.ContentHash, 64)
	assert.NotEqual(t, products[0].Source.ContentHash, products[1].Source.ContentHash)

	require.Len(t, products[0].Rows, 1)
	assert.Equal(t, "199304281130", products[0].Rows[0].Fields[1])
	require.Len(t, products[1].Rows, 1)
	assert.Equal(t, "200001010000", products[1].Rows[0].Fields[1])

	t.Run("cancelled context stops the scan", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewArchiveLoader(dir).LoadProducts(ctx, 3)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unknown station yields no products", func(t *testing.T) {
		products, err := NewArchiveLoader(dir).LoadProducts(context.Background(), 999)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestArchiveLoaderLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	writeArchiveFile(t, dir, "Metadaten_Geographie_00003.txt", strings.Join([]string{
		"Stations_id;Stationshoehe;Geogr.Breite;Geogr.Laenge;von_datum;bis_datum",
		"3;202;50.7827;6.0941;19930428;20110331",
	}, "\n"))
	writeArchiveFile(t, dir, "Metadaten_Stationsname_Betreibername_00003.txt", strings.Join([]string{
		"Stations_ID;Stationsname;Betreibername;Von_Datum;Bis_Datum",
		"3;Aachen;Deutscher Wetterdienst;19930428;20110331",
	}, "\n"))
	writeArchiveFile(t, dir, "Metadaten_Parameter_tu_00003.txt", strings.Join([]string{
		"Stations_ID;Von_Datum;Bis_Datum;Stationsname;Parameter;Parameterbeschreibung;Einheit;Datenquelle (Strukturversion=SV);Besonderheiten;Literaturhinweis",
		"3;19930428;19991231;Aachen;TT_10;momentane Lufttemperatur in 2m Hoehe;°C;ESAU-Daten bis 31.12.1999 (Zeitbezug ist MEZ);;",
	}, "\n"))
	writeArchiveFile(t, dir, "Metadaten_Geraete_Lufttemperatur_00003.txt", strings.Join([]string{
		"Stations_ID;Von_Datum;Bis_Datum;Geberhoehe ueber Grund [m];Geraetetyp Name;Messverfahren",
		"3;19930428;20110331;2,00;PT 100 (Luft);Temperaturmessung, elektr.",
	}, "\n"))
	writeArchiveFile(t, dir, "Metadaten_Geraete_Windgeschwindigkeit_00003.txt", strings.Join([]string{
		"Stations_ID;Von_Datum;Bis_Datum;Geberhoehe ueber Grund [m];Geraetetyp Name;Messverfahren",
		"3;19930428;20110331;10,00;WAA151;Windmessung",
	}, "\n"))

	src, metaCtx, err := NewArchiveLoader(dir).LoadMetadata(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, src.StationID)
	assert.Equal(t, "Meta_Daten_zehn_min_tu_00003", metaCtx.Filename)
	assert.Len(t, metaCtx.ContentHash, 64)
	require.Len(t, src.Geography, 1)
	assert.Equal(t, 50.7827, src.Geography[0].Value.Latitude)
	require.Len(t, src.Identity, 1)
	assert.Equal(t, "Aachen", src.Identity[0].Value.StationName)
	require.Len(t, src.Descriptions[domain.ParamAirTemp2m], 1)
	assert.Equal(t, domain.TimeRefCET, src.Descriptions[domain.ParamAirTemp2m][0].Value.TimeReference)
	require.Len(t, src.Instruments[domain.ParamAirTemp2m], 1)
	assert.Equal(t, "PT 100 (air)", src.Instruments[domain.ParamAirTemp2m][0].Value.DeviceTypeEN)

	t.Run("device files outside the parameter set are skipped", func(t *testing.T) {
		assert.Empty(t, src.Instruments[domain.ParamPressure])
		assert.Empty(t, src.Instruments[domain.ParamDewPoint])
	})

	t.Run("station without metadata files yields empty sources", func(t *testing.T) {
		src, _, err := NewArchiveLoader(dir).LoadMetadata(context.Background(), 999)
		require.NoError(t, err)
		assert.Empty(t, src.Geography)
		assert.Empty(t, src.Identity)
	})
}

package domain

import "strings"

// Translation tables for the free-text German metadata fields. Unmapped
// values pass through untranslated rather than failing: the tables grow as
// new station vintages show up in the archive.

var descriptionTranslations = map[string]string{
	"momentane Lufttemperatur in 2m Hoehe":         "instantaneous air temperature at 2m height",
	"Momentane Temperatur in 5 cm Hoehe 10min":     "instantaneous temperature at 5cm height",
	"Luftdruck in Stationshoehe der voran. 10 min": "air pressure at station altitude (preceding 10 min)",
	"relative Feucht in 2m Hoehe":                  "relative humidity at 2m height",
	"Taupunkttemperatur in 2m Hoehe":               "dew point temperature at 2m height",
}

var sourceTranslations = map[string]string{
	"10-Minutenwerte von automatischen Stationen der 1. Generation (MIRIAM/AFMS2, ESAU-Daten bis 31.12.1999 (Zeitbezug ist MEZ)": "10-minute values from automatic stations (1st gen, MIRIAM/AFMS2, ESAU data until 31 Dec 1999, time reference is CET)",
	"10-Minutenwerte von automatischen Stationen der 1. Generation (MIRIAM/AFMS2, ESAU-Daten ab 01.01.2000 (Zeitbezug ist UTC)":  "10-minute values from automatic stations (1st gen, MIRIAM/AFMS2, ESAU data from 1 Jan 2000, time reference is UTC)",
	"aus Messnetz2000": "from Messnetz2000",
}

var sensorTypeTranslations = map[string]string{
	"PT 100 (Luft)":  "PT 100 (air)",
	"HYGROMER MP100": "HYGROMER MP100",
}

var measurementMethodTranslations = map[string]string{
	"Temperaturmessung, elektr.": "temperature measurement, electric",
	"Feuchtemessung, elektr.":    "humidity measurement, electric",
}

func translate(table map[string]string, de string) string {
	if en, ok := table[strings.TrimSpace(de)]; ok {
		return en
	}
	return de
}

// TranslateDescription maps a German parameter description to English.
func TranslateDescription(de string) string { return translate(descriptionTranslations, de) }

// TranslateSource maps a German data-source text to English.
func TranslateSource(de string) string { return translate(sourceTranslations, de) }

// TranslateSensorType maps a German device type name to English.
func TranslateSensorType(de string) string { return translate(sensorTypeTranslations, de) }

// TranslateMeasurementMethod maps a German measurement method to English.
func TranslateMeasurementMethod(de string) string { return translate(measurementMethodTranslations, de) }

// ClassifyTimeReference derives the declared clock from a data-source text.
// The DWD encodes it inside the free text ("Zeitbezug ist MEZ" / "Zeitbezug
// ist UTC"); anything else is unknown.
func ClassifyTimeReference(dataSource string) TimeReference {
	switch {
	case strings.Contains(dataSource, "Zeitbezug ist MEZ"):
		return TimeRefCET
	case strings.Contains(dataSource, "Zeitbezug ist UTC"):
		return TimeRefUTC
	default:
		return TimeRefUnknown
	}
}

// Package parse reads the raw DWD archive file formats: semicolon-separated
// product files, the Metadaten_* metadata tables, and the fixed-width station
// description index. All upstream files are Latin-1 encoded; everything this
// package returns is UTF-8.
//
// The package stops at tokenized rows and typed metadata timelines. Semantic
// validation (row shape, timestamps, sentinels, duplicate detection) belongs
// to the domain package.
package parse

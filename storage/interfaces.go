package storage

import "market-dashboard/models"

// RecordWriter is the interface any backend persisting ingested rows must satisfy.
type RecordWriter interface {
	Write(records []*models.RawRecord) error
	Close() error
}

// RecordSource yields the raw rows a dashboard is built from.
type RecordSource interface {
	FetchAll() ([]*models.RawRecord, error)
}

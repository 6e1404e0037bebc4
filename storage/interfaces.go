package storage

import "fiverr-scraper/models"

// RecordSink is the interface any secondary record mirror must satisfy.
type RecordSink interface {
	Write(keyword string, records []*models.GigRecord) error
	Close() error
}

// SummaryWriter is the interface for exporting per-gig report projections.
type SummaryWriter interface {
	WriteSummaries(gigs []models.GigSummary) error
	Close() error
}

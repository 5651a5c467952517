package dto

import "time"

type ReportInput struct {
	VideoID      string
	LastPosition float64
	Percentage   float64
}

type ReportOutput struct {
	Accepted bool
}

type CompleteInput struct {
	VideoID string
}

type MarkSeenInput struct {
	SectionID string
}

type JournalEntryOutput struct {
	ID           string
	Kind         string
	TargetID     string
	LastPosition float64
	Percentage   float64
	Completed    bool
	Outcome      string
	Error        string
	CreatedAt    time.Time
}

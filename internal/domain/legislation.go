package domain

import "time"

// LegislationStatus represents the processing status of a queued legislation record.
// Values include LegislationPending, LegislationProcessing, LegislationCompleted, and LegislationFailed.
type LegislationStatus string

const (
	LegislationPending    LegislationStatus = "pending"
	LegislationProcessing LegislationStatus = "processing"
	LegislationCompleted  LegislationStatus = "completed"
	LegislationFailed     LegislationStatus = "failed"
)

// Legislation represents one discovered regulatory document awaiting analysis.
// DocumentURL is nil until acquisition resolves the source PDF; on failure the
// runner records the failure reason in this field instead.
type Legislation struct {
	ID           string            `gorm:"type:text;primaryKey" json:"id"`
	Title        string            `gorm:"type:text;not null" json:"title"`
	SourceURL    string            `gorm:"type:text;not null;uniqueIndex:idx_legislations_source_url" json:"source_url"`
	DocumentURL  *string           `gorm:"type:text" json:"document_url,omitempty"`
	Status       LegislationStatus `gorm:"type:text;index:idx_legislations_status;default:pending" json:"status"`
	DiscoveredAt time.Time         `json:"discovered_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TableName returns the database table name for Legislation.
func (Legislation) TableName() string {
	return "legislations"
}

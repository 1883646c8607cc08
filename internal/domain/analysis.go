package domain

import "time"

// AnalysisResult is the persisted outcome of one accepted pipeline run.
// Created exactly once per accepted legislation; never mutated afterwards.
type AnalysisResult struct {
	ID                string    `gorm:"type:text;primaryKey" json:"id"`
	LegislationID     string    `gorm:"type:text;not null;index:idx_analysis_results_legislation" json:"legislation_id"`
	Verdict           Verdict   `gorm:"type:text;not null" json:"verdict"`
	ConfidenceScore   int       `gorm:"not null" json:"confidence_score"`
	TimeHorizonMonths int       `gorm:"not null" json:"time_horizon_months"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName returns the database table name for AnalysisResult.
func (AnalysisResult) TableName() string {
	return "analysis_results"
}

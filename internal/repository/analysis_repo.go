package repository

import (
	"context"

	"github.com/tobbe/lexalpha/internal/domain"
	"gorm.io/gorm"
)

// AnalysisRepository handles persisted analysis results.
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new AnalysisRepository.
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create inserts a new analysis result. Results are write-once.
func (r *AnalysisRepository) Create(ctx context.Context, res *domain.AnalysisResult) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// GetByLegislationID retrieves the analysis result for a legislation.
func (r *AnalysisRepository) GetByLegislationID(ctx context.Context, legislationID string) (*domain.AnalysisResult, error) {
	var res domain.AnalysisResult
	if err := r.db.WithContext(ctx).
		First(&res, "legislation_id = ?", legislationID).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// CountByLegislationID returns the number of stored results for a legislation.
func (r *AnalysisRepository) CountByLegislationID(ctx context.Context, legislationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AnalysisResult{}).
		Where("legislation_id = ?", legislationID).Count(&count).Error
	return count, err
}

// List returns recent analysis results, newest first.
func (r *AnalysisRepository) List(ctx context.Context, limit, offset int) ([]domain.AnalysisResult, error) {
	var out []domain.AnalysisResult
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

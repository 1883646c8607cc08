package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tobbe/lexalpha/internal/domain"
	"gorm.io/gorm"
)

// ErrNoPending is returned by ClaimPending when the queue holds no pending rows.
var ErrNoPending = errors.New("no pending legislation")

// LegislationRepository handles legislation queue operations.
type LegislationRepository struct {
	db *gorm.DB
}

// NewLegislationRepository creates a new LegislationRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *LegislationRepository: repository instance bound to db.
func NewLegislationRepository(db *gorm.DB) *LegislationRepository {
	return &LegislationRepository{db: db}
}

// Create inserts a new legislation record.
func (r *LegislationRepository) Create(ctx context.Context, l *domain.Legislation) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// ClaimPending atomically claims the oldest pending legislation, moving it to
// processing. The update is conditional on the row still being pending, so
// two overlapping batch invocations sharing the store cannot both claim the
// same row; the loser retries against the next candidate.
// Returns ErrNoPending when the queue is empty.
func (r *LegislationRepository) ClaimPending(ctx context.Context) (*domain.Legislation, error) {
	for {
		var l domain.Legislation
		err := r.db.WithContext(ctx).
			Where("status = ?", domain.LegislationPending).
			Order("discovered_at ASC").
			First(&l).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoPending
			}
			return nil, err
		}

		res := r.db.WithContext(ctx).
			Model(&domain.Legislation{}).
			Where("id = ? AND status = ?", l.ID, domain.LegislationPending).
			Updates(map[string]interface{}{
				"status":     domain.LegislationProcessing,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent runner; try the next row.
			continue
		}

		l.Status = domain.LegislationProcessing
		return &l, nil
	}
}

// SetDocumentURL records the resolved document reference without touching status.
func (r *LegislationRepository) SetDocumentURL(ctx context.Context, id, url string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Legislation{}).
		Where("id = ?", id).
		Update("document_url", url).Error
}

// MarkCompleted moves a legislation to its completed terminal state.
func (r *LegislationRepository) MarkCompleted(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Legislation{}).
		Where("id = ?", id).
		Update("status", domain.LegislationCompleted).Error
}

// MarkFailed moves a legislation to failed, recording the failure reason in
// place of the document reference.
func (r *LegislationRepository) MarkFailed(ctx context.Context, id, reason string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Legislation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.LegislationFailed,
			"document_url": reason,
		}).Error
}

// GetByID retrieves a legislation by its ID.
func (r *LegislationRepository) GetByID(ctx context.Context, id string) (*domain.Legislation, error) {
	var l domain.Legislation
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// ExistsBySourceURL checks whether a source URL has already been discovered.
// Used by the sentinel to dedupe feed entries.
func (r *LegislationRepository) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Legislation{}).
		Where("source_url = ?", sourceURL).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByStatus returns legislations in the given status, newest first.
func (r *LegislationRepository) ListByStatus(ctx context.Context, status domain.LegislationStatus, limit, offset int) ([]domain.Legislation, error) {
	var out []domain.Legislation
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("discovered_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// List returns legislations regardless of status, newest first.
func (r *LegislationRepository) List(ctx context.Context, limit, offset int) ([]domain.Legislation, error) {
	var out []domain.Legislation
	err := r.db.WithContext(ctx).
		Order("discovered_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// CountByStatus returns the number of legislations in the given status.
func (r *LegislationRepository) CountByStatus(ctx context.Context, status domain.LegislationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Legislation{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}

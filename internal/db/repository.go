package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/steemit/postsmanager/internal/models"
)

// DefaultRecentLimit caps Recent when no limit is given
const DefaultRecentLimit = 50

// Journal stores settled mutations
type Journal struct {
	db *gorm.DB
}

// NewJournal creates a journal over db
func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Migrate creates or updates the journal table
func (j *Journal) Migrate(ctx context.Context) error {
	if err := j.db.WithContext(ctx).AutoMigrate(&models.MutationRecord{}); err != nil {
		return fmt.Errorf("failed to migrate mutation journal: %w", err)
	}
	return nil
}

// Record appends one settled mutation
func (j *Journal) Record(ctx context.Context, rec *models.MutationRecord) error {
	return j.db.WithContext(ctx).Create(rec).Error
}

// Recent returns the latest mutations, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]*models.MutationRecord, error) {
	var records []*models.MutationRecord
	if err := j.db.WithContext(ctx).
		Order("finished_at DESC").
		Limit(clampLimit(limit)).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ForTarget returns the mutations of one post or comment, newest first
func (j *Journal) ForTarget(ctx context.Context, kind string, targetID int64, limit int) ([]*models.MutationRecord, error) {
	var records []*models.MutationRecord
	if err := j.db.WithContext(ctx).
		Where("kind = ? AND target_id = ?", kind, targetID).
		Order("finished_at DESC").
		Limit(clampLimit(limit)).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultRecentLimit {
		return DefaultRecentLimit
	}
	return limit
}

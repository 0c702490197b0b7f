package models

import (
	"database/sql"
	"time"
)

// MutationRecord is one completed mutation instance in the journal
type MutationRecord struct {
	ID         string         `gorm:"primaryKey;type:uuid;column:id" json:"id"`
	Kind       string         `gorm:"type:varchar(16);not null;index;column:kind" json:"kind"`
	Operation  string         `gorm:"type:varchar(16);not null;column:operation" json:"operation"`
	TargetID   int64          `gorm:"column:target_id" json:"targetId"`
	State      string         `gorm:"type:varchar(16);not null;column:state" json:"state"`
	Error      sql.NullString `gorm:"type:text;column:error" json:"-"`
	StartedAt  time.Time      `gorm:"not null;column:started_at" json:"startedAt"`
	FinishedAt time.Time      `gorm:"not null;index;column:finished_at" json:"finishedAt"`
}

// TableName specifies the table name for MutationRecord
func (MutationRecord) TableName() string {
	return "pm_mutation_journal"
}

// ErrorMessage returns the failure message or an empty string
func (r *MutationRecord) ErrorMessage() string {
	if r.Error.Valid {
		return r.Error.String
	}
	return ""
}

package models

import (
	"time"
)

// SyncStatus is the lifecycle state of one reconciliation run
type SyncStatus string

const (
	SyncInProgress SyncStatus = "in_progress"
	SyncCompleted  SyncStatus = "completed"
	SyncFailed     SyncStatus = "failed"
)

// SyncRun records one execution of a reconciliation or outbound-match pass.
// Created at run start, mutated only by the run that created it, terminal
// once Status leaves in_progress.
type SyncRun struct {
	ID          string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Source      MovementSource `gorm:"type:varchar(20);not null;index" json:"source"`
	Status      SyncStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	StartedAt   time.Time      `gorm:"not null" json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`

	ItemsProcessed      int `gorm:"default:0" json:"itemsProcessed"`
	ItemsAdded          int `gorm:"default:0" json:"itemsAdded"`
	ItemsUpdated        int `gorm:"default:0" json:"itemsUpdated"`
	ItemsUnchanged      int `gorm:"default:0" json:"itemsUnchanged"`
	ItemsShipped        int `gorm:"default:0" json:"itemsShipped"`
	ItemsAlreadyShipped int `gorm:"default:0" json:"itemsAlreadyShipped"`
	ItemsNotFound       int `gorm:"default:0" json:"itemsNotFound"`
	ItemsMissing        int `gorm:"default:0" json:"itemsMissing"`
	ParseErrors         int `gorm:"default:0" json:"parseErrors"`

	ErrorMessage string `gorm:"type:text" json:"errorMessage,omitempty"`

	// Source vs destination row counts for drift visibility
	SourceRowCount int `gorm:"default:0" json:"sourceRowCount"`
	DestRowCount   int `gorm:"default:0" json:"destRowCount"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for SyncRun
func (SyncRun) TableName() string {
	return "sync_runs"
}

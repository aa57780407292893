package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityAction identifies a user-initiated operation
type ActivityAction string

const (
	ActivityBulkAdd      ActivityAction = "bulk_add"
	ActivityBulkDelete   ActivityAction = "bulk_delete"
	ActivityClear        ActivityAction = "clear"
	ActivityLogin        ActivityAction = "login"
	ActivitySyncTrigger  ActivityAction = "sync_trigger"
	ActivityRoleChange   ActivityAction = "role_change"
	ActivityStatusChange ActivityAction = "status_change"
)

// ActivityLogEntry records a user-initiated operation for admin auditing,
// separate from device Movements. Append-only.
type ActivityLogEntry struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *string        `gorm:"type:uuid;index" json:"userId,omitempty"`
	UserEmail string         `json:"userEmail,omitempty"`
	Action    ActivityAction `gorm:"type:varchar(30);not null;index" json:"action"`
	ItemCount int            `gorm:"default:0" json:"itemCount"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"` // e.g. affected IMEI list
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for ActivityLogEntry
func (ActivityLogEntry) TableName() string {
	return "activity_log"
}

package models

import (
	"database/sql"
	"time"
)

// Notification represents a notification row appended on relationship
// mutations. Delivery and read APIs live in the platform's notification
// service; this service only emits.
type Notification struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	Type      int16         `gorm:"type:smallint;not null;column:type_id"`
	CreatedAt time.Time     `gorm:"not null;column:created_at"`
	SrcID     sql.NullInt64 `gorm:"column:src_id"`
	DstID     sql.NullInt64 `gorm:"column:dst_id"`

	// Relationships
	Src *Profile `gorm:"foreignKey:SrcID;references:ID"`
	Dst *Profile `gorm:"foreignKey:DstID;references:ID"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// Notification type constants
const (
	NotifyTypeFriendRequest int16 = 1
	NotifyTypeFriendAccept  int16 = 2
	NotifyTypeFollow        int16 = 3
)

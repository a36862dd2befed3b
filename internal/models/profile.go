package models

import (
	"time"
)

// Profile represents the public identity of a platform user
type Profile struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Username    string    `gorm:"type:varchar(32);not null;uniqueIndex:profiles_ux1;column:username"`
	DisplayName string    `gorm:"type:varchar(64);not null;default:'';column:display_name"`
	AvatarURL   string    `gorm:"type:varchar(1024);not null;default:'';column:avatar_url"`
	About       string    `gorm:"type:varchar(160);not null;default:'';column:about"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// ProfileSummary is the read-side projection attached to relationship
// listings and search results
type ProfileSummary struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Summary returns the public projection of a profile
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}
}

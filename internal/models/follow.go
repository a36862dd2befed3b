package models

import (
	"time"
)

// TargetType tags the kind of entity a follow edge points at
type TargetType string

// Follow target type constants
const (
	TargetUser  TargetType = "user"
	TargetGroup TargetType = "group"
	TargetPage  TargetType = "page"
)

// ValidTargetType reports whether t is a known follow target kind
func ValidTargetType(t TargetType) bool {
	switch t {
	case TargetUser, TargetGroup, TargetPage:
		return true
	}
	return false
}

// Follow represents a directional follow edge from a user to a target
// entity. Uniqueness is per ordered (follower, target_type, target) tuple.
type Follow struct {
	ID         int64      `gorm:"primaryKey;autoIncrement;column:id"`
	FollowerID int64      `gorm:"not null;uniqueIndex:follows_edge_ux;index:follows_follower_ix;column:follower_id"`
	TargetType TargetType `gorm:"type:varchar(8);not null;uniqueIndex:follows_edge_ux;column:target_type"`
	TargetID   int64      `gorm:"not null;uniqueIndex:follows_edge_ux;index:follows_target_ix;column:target_id"`
	Status     EdgeStatus `gorm:"type:varchar(16);not null;default:'accepted';column:status"`
	Level      int16      `gorm:"type:smallint;not null;default:0;column:level"`
	CreatedAt  time.Time  `gorm:"not null;column:created_at"`
	UpdatedAt  time.Time  `gorm:"not null;column:updated_at"`

	// Relationships
	Follower *Profile `gorm:"foreignKey:FollowerID;references:ID"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}

// Capability level constants. Gaps between ranks leave room for
// intermediate tiers without renumbering.
const (
	LevelPublic    int16 = 0
	LevelMember    int16 = 2
	LevelModerator int16 = 4
	LevelAdmin     int16 = 6
	LevelOwner     int16 = 8
)

// LevelNameToID maps a level name to its rank, defaulting to public
func LevelNameToID(name string) int16 {
	switch name {
	case "member":
		return LevelMember
	case "moderator":
		return LevelModerator
	case "admin":
		return LevelAdmin
	case "owner":
		return LevelOwner
	default:
		return LevelPublic
	}
}

// LevelName maps a rank back to its level name
func LevelName(level int16) string {
	switch level {
	case LevelMember:
		return "member"
	case LevelModerator:
		return "moderator"
	case LevelAdmin:
		return "admin"
	case LevelOwner:
		return "owner"
	default:
		return "public"
	}
}

package models

import (
	"time"
)

// EdgeStatus defines the state of a relationship edge
type EdgeStatus string

// Edge status constants
const (
	StatusPending  EdgeStatus = "pending"
	StatusAccepted EdgeStatus = "accepted"
	StatusBlocked  EdgeStatus = "blocked"
)

// Friendship represents a symmetric friendship edge between two users.
// The pair is stored in canonical order (UserLoID < UserHiID) so a lookup
// for either direction resolves to the same row; RequesterID records which
// side initiated the request.
type Friendship struct {
	ID          int64      `gorm:"primaryKey;autoIncrement;column:id"`
	UserLoID    int64      `gorm:"not null;uniqueIndex:friendships_pair_ux;column:user_lo"`
	UserHiID    int64      `gorm:"not null;uniqueIndex:friendships_pair_ux;column:user_hi"`
	RequesterID int64      `gorm:"not null;index:friendships_requester_ix;column:requester_id"`
	Status      EdgeStatus `gorm:"type:varchar(16);not null;default:'pending';column:status"`
	CreatedAt   time.Time  `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time  `gorm:"not null;column:updated_at"`

	// Relationships
	UserLo *Profile `gorm:"foreignKey:UserLoID;references:ID"`
	UserHi *Profile `gorm:"foreignKey:UserHiID;references:ID"`
}

// TableName specifies the table name for Friendship
func (Friendship) TableName() string {
	return "friendships"
}

// CanonicalPair places two user ids into their fixed storage slots,
// smaller id first
func CanonicalPair(a, b int64) (lo, hi int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// NewFriendship builds a pending edge from requester to addressee with
// canonical pair ordering applied
func NewFriendship(requesterID, addresseeID int64) *Friendship {
	lo, hi := CanonicalPair(requesterID, addresseeID)
	return &Friendship{
		UserLoID:    lo,
		UserHiID:    hi,
		RequesterID: requesterID,
		Status:      StatusPending,
	}
}

// AddresseeID returns the side of the pair that did not initiate the request
func (f *Friendship) AddresseeID() int64 {
	if f.RequesterID == f.UserLoID {
		return f.UserHiID
	}
	return f.UserLoID
}

// OtherID returns the party that is not userID. The result is only
// meaningful when userID is one of the pair.
func (f *Friendship) OtherID(userID int64) int64 {
	if f.UserLoID == userID {
		return f.UserHiID
	}
	return f.UserLoID
}

// Involves reports whether userID is a party to the edge
func (f *Friendship) Involves(userID int64) bool {
	return f.UserLoID == userID || f.UserHiID == userID
}

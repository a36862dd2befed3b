package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/peernote/relations/internal/models"
	"github.com/peernote/relations/internal/relations"
)

// FriendshipRepository provides friendship-edge database operations
type FriendshipRepository struct {
	*Repository
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(repo *Repository) *FriendshipRepository {
	return &FriendshipRepository{Repository: repo}
}

// Insert stores a new friendship edge. A unique-index violation on the
// canonical pair reports relations.ErrConflict.
func (r *FriendshipRepository) Insert(ctx context.Context, f *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return relations.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID retrieves a friendship edge by id
func (r *FriendshipRepository) GetByID(ctx context.Context, id int64) (*models.Friendship, error) {
	var edge models.Friendship
	if err := r.db.WithContext(ctx).First(&edge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &edge, nil
}

// FindByPair resolves the edge for an unordered pair. Lookups for either
// direction hit the same canonical row.
func (r *FriendshipRepository) FindByPair(ctx context.Context, a, b int64) (*models.Friendship, error) {
	lo, hi := models.CanonicalPair(a, b)
	var edge models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_lo = ? AND user_hi = ?", lo, hi).
		First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &edge, nil
}

// UpdateStatus transitions the edge from expect to next atomically. A
// guard miss (row gone or status changed) reports
// relations.ErrPreconditionFailed; concurrent callers on the same edge get
// exactly one success.
func (r *FriendshipRepository) UpdateStatus(ctx context.Context, id int64, expect, next models.EdgeStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ? AND status = ?", id, expect).
		Update("status", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return relations.ErrPreconditionFailed
	}
	return nil
}

// Delete removes the edge, requiring its current status to match. Reports
// relations.ErrNotFound when no row satisfies the guard.
func (r *FriendshipRepository) Delete(ctx context.Context, id int64, requireStatus models.EdgeStatus) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, requireStatus).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return relations.ErrNotFound
	}
	return nil
}

// ListIncoming returns pending edges addressed to userID, newest first
func (r *FriendshipRepository) ListIncoming(ctx context.Context, userID int64, limit int) ([]*models.Friendship, error) {
	var edges []*models.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_lo = ? OR user_hi = ?) AND requester_id <> ? AND status = ?",
			userID, userID, userID, models.StatusPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// ListAccepted returns accepted edges involving userID
func (r *FriendshipRepository) ListAccepted(ctx context.Context, userID int64, offset, limit int) ([]*models.Friendship, error) {
	var edges []*models.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_lo = ? OR user_hi = ?) AND status = ?",
			userID, userID, models.StatusAccepted).
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// ForPairs returns every edge between userID and any member of otherIDs in
// a single query, regardless of which slot userID occupies
func (r *FriendshipRepository) ForPairs(ctx context.Context, userID int64, otherIDs []int64) ([]*models.Friendship, error) {
	var edges []*models.Friendship
	if len(otherIDs) == 0 {
		return edges, nil
	}
	err := r.db.WithContext(ctx).
		Where("(user_lo = ? AND user_hi IN ?) OR (user_hi = ? AND user_lo IN ?)",
			userID, otherIDs, userID, otherIDs).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/peernote/relations/internal/models"
	"github.com/peernote/relations/internal/relations"
)

// FollowRepository provides follow-edge database operations
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Insert stores a new follow edge. A unique-index violation on the
// ordered (follower, target_type, target) tuple reports
// relations.ErrConflict.
func (r *FollowRepository) Insert(ctx context.Context, f *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return relations.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID retrieves a follow edge by id
func (r *FollowRepository) GetByID(ctx context.Context, id int64) (*models.Follow, error) {
	var edge models.Follow
	if err := r.db.WithContext(ctx).First(&edge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &edge, nil
}

// FindByEdge resolves the edge for an ordered, typed tuple
func (r *FollowRepository) FindByEdge(ctx context.Context, followerID int64, targetType models.TargetType, targetID int64) (*models.Follow, error) {
	var edge models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND target_type = ? AND target_id = ?", followerID, targetType, targetID).
		First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &edge, nil
}

// UpdateStatus transitions the edge from expect to next atomically
func (r *FollowRepository) UpdateStatus(ctx context.Context, id int64, expect, next models.EdgeStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Follow{}).
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

// UpdateLevel changes the capability level, guarded on accepted status
func (r *FollowRepository) UpdateLevel(ctx context.Context, id int64, level int16) error {
	res := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("id = ? AND status = ?", id, models.StatusAccepted).
		Update("level", level)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return relations.ErrPreconditionFailed
	}
	return nil
}

// Delete removes the edge, requiring its current status to match
func (r *FollowRepository) Delete(ctx context.Context, id int64, requireStatus models.EdgeStatus) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, requireStatus).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return relations.ErrNotFound
	}
	return nil
}

// ListFollowing returns accepted edges where followerID is the follower
func (r *FollowRepository) ListFollowing(ctx context.Context, followerID int64, offset, limit int) ([]*models.Follow, error) {
	var edges []*models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND status = ?", followerID, models.StatusAccepted).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// ListFollowers returns accepted edges pointing at the target
func (r *FollowRepository) ListFollowers(ctx context.Context, targetType models.TargetType, targetID int64, offset, limit int) ([]*models.Follow, error) {
	var edges []*models.Follow
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ? AND status = ?", targetType, targetID, models.StatusAccepted).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// CountFollowers counts accepted edges pointing at the target
func (r *FollowRepository) CountFollowers(ctx context.Context, targetType models.TargetType, targetID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("target_type = ? AND target_id = ? AND status = ?", targetType, targetID, models.StatusAccepted).
		Count(&count).Error
	return count, err
}

// CountFollowing counts accepted edges where followerID is the follower
func (r *FollowRepository) CountFollowing(ctx context.Context, followerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", followerID, models.StatusAccepted).
		Count(&count).Error
	return count, err
}

// ForTargets returns the follower's edges for any member of targetIDs in a
// single query
func (r *FollowRepository) ForTargets(ctx context.Context, followerID int64, targetType models.TargetType, targetIDs []int64) ([]*models.Follow, error) {
	var edges []*models.Follow
	if len(targetIDs) == 0 {
		return edges, nil
	}
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND target_type = ? AND target_id IN ?", followerID, targetType, targetIDs).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

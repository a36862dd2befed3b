package relations

import (
	"context"

	"github.com/peernote/relations/internal/models"
)

// FriendshipStore is the persistence contract for symmetric friendship
// edges. Point lookups return (nil, nil) when no row matches. Insert maps
// a unique-index violation to ErrConflict; UpdateStatus and Delete are
// atomic with respect to concurrent callers on the same row and report
// ErrPreconditionFailed / ErrNotFound when the guard does not hold.
type FriendshipStore interface {
	Insert(ctx context.Context, f *models.Friendship) error
	GetByID(ctx context.Context, id int64) (*models.Friendship, error)
	FindByPair(ctx context.Context, a, b int64) (*models.Friendship, error)
	UpdateStatus(ctx context.Context, id int64, expect, next models.EdgeStatus) error
	Delete(ctx context.Context, id int64, requireStatus models.EdgeStatus) error
	ListIncoming(ctx context.Context, userID int64, limit int) ([]*models.Friendship, error)
	ListAccepted(ctx context.Context, userID int64, offset, limit int) ([]*models.Friendship, error)
	ForPairs(ctx context.Context, userID int64, otherIDs []int64) ([]*models.Friendship, error)
}

// FollowStore is the persistence contract for directional follow edges,
// keyed by the ordered (follower, target_type, target) tuple.
type FollowStore interface {
	Insert(ctx context.Context, f *models.Follow) error
	GetByID(ctx context.Context, id int64) (*models.Follow, error)
	FindByEdge(ctx context.Context, followerID int64, targetType models.TargetType, targetID int64) (*models.Follow, error)
	UpdateStatus(ctx context.Context, id int64, expect, next models.EdgeStatus) error
	UpdateLevel(ctx context.Context, id int64, level int16) error
	Delete(ctx context.Context, id int64, requireStatus models.EdgeStatus) error
	ListFollowing(ctx context.Context, followerID int64, offset, limit int) ([]*models.Follow, error)
	ListFollowers(ctx context.Context, targetType models.TargetType, targetID int64, offset, limit int) ([]*models.Follow, error)
	CountFollowers(ctx context.Context, targetType models.TargetType, targetID int64) (int64, error)
	CountFollowing(ctx context.Context, followerID int64) (int64, error)
	ForTargets(ctx context.Context, followerID int64, targetType models.TargetType, targetIDs []int64) ([]*models.Follow, error)
}

// ProfileStore is the read-side profile collaborator used for enrichment
// and candidate search.
type ProfileStore interface {
	GetByID(ctx context.Context, id int64) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Profile, error)
	SearchByName(ctx context.Context, query string, excludeID int64, limit int) ([]*models.Profile, error)
}

// NotificationStore appends notification rows emitted on relationship
// mutations. Emission failures are logged, never surfaced to the caller.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

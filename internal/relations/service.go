package relations

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/peernote/relations/internal/cache"
	"github.com/peernote/relations/internal/models"
	"github.com/peernote/relations/pkg/logging"
)

// Service implements the relationship state machine. Every operation
// touches at most one edge row; correctness under concurrent callers rests
// on the store's insert-time uniqueness and guarded status updates.
type Service struct {
	friendships FriendshipStore
	follows     FollowStore
	notifs      NotificationStore
	cache       *cache.Cache
	logger      *zap.Logger
}

// NewService creates a new relationship service
func NewService(friendships FriendshipStore, follows FollowStore, notifs NotificationStore, redisCache *cache.Cache) *Service {
	return &Service{
		friendships: friendships,
		follows:     follows,
		notifs:      notifs,
		cache:       redisCache,
		logger:      logging.WithComponent("relations-service"),
	}
}

// SendFriendRequest creates a pending friendship edge from actor to target.
// A concurrent duplicate insert surfaces as ErrConflict; callers treat both
// ErrDuplicateRequest and ErrConflict as "already satisfied".
func (s *Service) SendFriendRequest(ctx context.Context, actorID, targetID int64) (*models.Friendship, error) {
	if actorID == targetID {
		return nil, ErrSelfRelationship
	}

	existing, err := s.friendships.FindByPair(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRequest
	}

	edge := models.NewFriendship(actorID, targetID)
	if err := s.friendships.Insert(ctx, edge); err != nil {
		return nil, err
	}

	s.notify(ctx, models.NotifyTypeFriendRequest, actorID, targetID)

	s.logger.Debug("Friend request sent",
		zap.Int64("requester", actorID),
		zap.Int64("addressee", targetID),
		zap.Int64("edge_id", edge.ID))

	return edge, nil
}

// AcceptFriendRequest transitions a pending edge to accepted. Only the
// addressee may accept; a stale or repeated accept fails with
// ErrPreconditionFailed.
func (s *Service) AcceptFriendRequest(ctx context.Context, actorID, edgeID int64) (*models.Friendship, error) {
	edge, err := s.friendships.GetByID(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, ErrNotFound
	}
	if edge.AddresseeID() != actorID {
		return nil, ErrForbidden
	}

	if err := s.friendships.UpdateStatus(ctx, edgeID, models.StatusPending, models.StatusAccepted); err != nil {
		return nil, err
	}
	edge.Status = models.StatusAccepted

	s.notify(ctx, models.NotifyTypeFriendAccept, actorID, edge.RequesterID)

	s.logger.Debug("Friend request accepted",
		zap.Int64("addressee", actorID),
		zap.Int64("edge_id", edgeID))

	return edge, nil
}

// RejectFriendRequest removes a pending edge. Friendship rejection is a
// hard delete, so the requester may ask again later.
func (s *Service) RejectFriendRequest(ctx context.Context, actorID, edgeID int64) error {
	edge, err := s.friendships.GetByID(ctx, edgeID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrNotFound
	}
	if edge.AddresseeID() != actorID {
		return ErrForbidden
	}

	if err := s.friendships.Delete(ctx, edgeID, models.StatusPending); err != nil {
		// The edge was observed above, so a miss means the status guard
		// failed underneath us.
		if errors.Is(err, ErrNotFound) {
			return ErrPreconditionFailed
		}
		return err
	}

	s.logger.Debug("Friend request rejected",
		zap.Int64("addressee", actorID),
		zap.Int64("edge_id", edgeID))

	return nil
}

// Unfriend removes an accepted friendship edge. Either party may remove it.
func (s *Service) Unfriend(ctx context.Context, actorID, otherID int64) error {
	edge, err := s.friendships.FindByPair(ctx, actorID, otherID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrNotFound
	}
	if edge.Status != models.StatusAccepted {
		return ErrPreconditionFailed
	}

	if err := s.friendships.Delete(ctx, edge.ID, models.StatusAccepted); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrPreconditionFailed
		}
		return err
	}

	s.logger.Debug("Friendship removed",
		zap.Int64("actor", actorID),
		zap.Int64("other", otherID))

	return nil
}

// Follow creates a follow edge directly in accepted status; follow has no
// approval step. Collective targets may carry a capability level, user
// targets are always stored at public.
func (s *Service) Follow(ctx context.Context, actorID int64, targetType models.TargetType, targetID int64, levelName string) (*models.Follow, error) {
	if !models.ValidTargetType(targetType) {
		return nil, ErrInvalidArgument
	}
	if targetType == models.TargetUser && actorID == targetID {
		return nil, ErrSelfRelationship
	}
	if levelName != "" && !validLevelName(levelName) {
		return nil, ErrInvalidArgument
	}

	level := models.LevelPublic
	if targetType != models.TargetUser {
		level = models.LevelNameToID(levelName)
	}

	existing, err := s.follows.FindByEdge(ctx, actorID, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRequest
	}

	edge := &models.Follow{
		FollowerID: actorID,
		TargetType: targetType,
		TargetID:   targetID,
		Status:     models.StatusAccepted,
		Level:      level,
	}
	if err := s.follows.Insert(ctx, edge); err != nil {
		return nil, err
	}

	s.invalidateFollowerCount(targetType, targetID)
	if targetType == models.TargetUser {
		s.notify(ctx, models.NotifyTypeFollow, actorID, targetID)
	}

	s.logger.Debug("Follow created",
		zap.Int64("follower", actorID),
		zap.String("target_type", string(targetType)),
		zap.Int64("target", targetID),
		zap.Int16("level", level))

	return edge, nil
}

// Unfollow removes the actor's follow edge for the target. A blocked edge
// may also be removed by its follower, which clears the uniqueness slot.
func (s *Service) Unfollow(ctx context.Context, actorID int64, targetType models.TargetType, targetID int64) error {
	edge, err := s.follows.FindByEdge(ctx, actorID, targetType, targetID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrNotFound
	}

	if err := s.follows.Delete(ctx, edge.ID, edge.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrPreconditionFailed
		}
		return err
	}

	s.invalidateFollowerCount(targetType, targetID)

	s.logger.Debug("Follow removed",
		zap.Int64("follower", actorID),
		zap.String("target_type", string(targetType)),
		zap.Int64("target", targetID))

	return nil
}

// BlockFollower converts an accepted follow edge to blocked. Only a user
// target may contest its own followers; the blocked edge keeps occupying
// the uniqueness slot so the follower cannot simply re-follow.
func (s *Service) BlockFollower(ctx context.Context, actorID, edgeID int64) error {
	edge, err := s.follows.GetByID(ctx, edgeID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrNotFound
	}
	if edge.TargetType != models.TargetUser || edge.TargetID != actorID {
		return ErrForbidden
	}

	if err := s.follows.UpdateStatus(ctx, edgeID, models.StatusAccepted, models.StatusBlocked); err != nil {
		return err
	}

	s.invalidateFollowerCount(edge.TargetType, edge.TargetID)

	s.logger.Debug("Follower blocked",
		zap.Int64("target", actorID),
		zap.Int64("edge_id", edgeID))

	return nil
}

// SetFollowLevel changes the capability level on an accepted follow edge.
// Permitted only to the follower and only on collective targets.
func (s *Service) SetFollowLevel(ctx context.Context, actorID, edgeID int64, levelName string) (*models.Follow, error) {
	if !validLevelName(levelName) {
		return nil, ErrInvalidArgument
	}

	edge, err := s.follows.GetByID(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, ErrNotFound
	}
	if edge.FollowerID != actorID || edge.TargetType == models.TargetUser {
		return nil, ErrForbidden
	}

	level := models.LevelNameToID(levelName)
	if err := s.follows.UpdateLevel(ctx, edgeID, level); err != nil {
		return nil, err
	}
	edge.Level = level

	s.logger.Debug("Follow level updated",
		zap.Int64("follower", actorID),
		zap.Int64("edge_id", edgeID),
		zap.Int16("level", level))

	return edge, nil
}

func validLevelName(name string) bool {
	switch name {
	case "public", "member", "moderator", "admin", "owner":
		return true
	}
	return false
}

// notify appends a notification row; emission failures are logged only
func (s *Service) notify(ctx context.Context, notifyType int16, srcID, dstID int64) {
	if s.notifs == nil {
		return
	}
	n := &models.Notification{
		Type:  notifyType,
		SrcID: sql.NullInt64{Int64: srcID, Valid: true},
		DstID: sql.NullInt64{Int64: dstID, Valid: true},
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		s.logger.Warn("Failed to emit notification",
			zap.Int16("type", notifyType),
			zap.Int64("src", srcID),
			zap.Int64("dst", dstID),
			zap.Error(err))
	}
}

func (s *Service) invalidateFollowerCount(targetType models.TargetType, targetID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(cache.FollowerCountKey(string(targetType), targetID)); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		s.logger.Warn("Failed to invalidate follower count",
			zap.String("target_type", string(targetType)),
			zap.Int64("target", targetID),
			zap.Error(err))
	}
}

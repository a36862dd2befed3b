package relations

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/peernote/relations/internal/cache"
	"github.com/peernote/relations/internal/models"
	"github.com/peernote/relations/pkg/config"
	"github.com/peernote/relations/pkg/logging"
)

// RelationKind selects which relation family a query addresses
type RelationKind string

// Relation kind constants
const (
	KindFriendship RelationKind = "friendship"
	KindFollow     RelationKind = "follow"
)

// IncomingRequest is a pending friend request enriched with the
// requester's public profile
type IncomingRequest struct {
	EdgeID    int64                 `json:"id"`
	Requester models.ProfileSummary `json:"requester"`
	CreatedAt time.Time             `json:"created_at"`
}

// FriendEntry is an accepted friendship normalized to "the other party"
type FriendEntry struct {
	EdgeID int64                 `json:"id"`
	Friend models.ProfileSummary `json:"friend"`
	Since  time.Time             `json:"since"`
}

// FollowEntry is a follow edge from the follower's perspective
type FollowEntry struct {
	EdgeID     int64                  `json:"id"`
	TargetType models.TargetType      `json:"target_type"`
	TargetID   int64                  `json:"target_id"`
	Target     *models.ProfileSummary `json:"target,omitempty"`
	Level      string                 `json:"level"`
	Since      time.Time              `json:"since"`
}

// FollowerEntry is a follow edge from the target's perspective
type FollowerEntry struct {
	EdgeID   int64                 `json:"id"`
	Follower models.ProfileSummary `json:"follower"`
	Level    string                `json:"level"`
	Since    time.Time             `json:"since"`
}

// Candidate is a profile search hit annotated with the acting user's
// current relationship to it, if any
type Candidate struct {
	Profile models.ProfileSummary `json:"profile"`
	Status  *models.EdgeStatus    `json:"status"`
	Subject bool                  `json:"is_subject"`
}

// Queries implements the relationship read surface
type Queries struct {
	friendships FriendshipStore
	follows     FollowStore
	profiles    ProfileStore
	cache       *cache.Cache
	cfg         config.RelationsConfig
	logger      *zap.Logger
}

// NewQueries creates a new query surface
func NewQueries(friendships FriendshipStore, follows FollowStore, profiles ProfileStore, redisCache *cache.Cache, cfg config.RelationsConfig) *Queries {
	return &Queries{
		friendships: friendships,
		follows:     follows,
		profiles:    profiles,
		cache:       redisCache,
		cfg:         cfg,
		logger:      logging.WithComponent("relations-query"),
	}
}

// ListIncomingRequests returns pending friend requests addressed to userID,
// newest first, each enriched with the requester's public profile
func (q *Queries) ListIncomingRequests(ctx context.Context, userID int64, limit int) ([]IncomingRequest, error) {
	limit = q.clampLimit(limit)

	edges, err := q.friendships.ListIncoming(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	requesterIDs := make([]int64, 0, len(edges))
	for _, e := range edges {
		requesterIDs = append(requesterIDs, e.RequesterID)
	}
	summaries, err := q.profileSummaries(ctx, requesterIDs)
	if err != nil {
		return nil, err
	}

	result := make([]IncomingRequest, 0, len(edges))
	for _, e := range edges {
		summary, ok := summaries[e.RequesterID]
		if !ok {
			// Requester profile vanished underneath the edge; skip the row
			continue
		}
		result = append(result, IncomingRequest{
			EdgeID:    e.ID,
			Requester: summary,
			CreatedAt: e.CreatedAt,
		})
	}
	return result, nil
}

// ListFriends returns accepted friendships for userID, normalized to the
// other party per row
func (q *Queries) ListFriends(ctx context.Context, userID int64, page, pageSize int) ([]FriendEntry, error) {
	offset, limit := q.pageWindow(page, pageSize)

	edges, err := q.friendships.ListAccepted(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]int64, 0, len(edges))
	for _, e := range edges {
		otherIDs = append(otherIDs, e.OtherID(userID))
	}
	summaries, err := q.profileSummaries(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	result := make([]FriendEntry, 0, len(edges))
	for _, e := range edges {
		summary, ok := summaries[e.OtherID(userID)]
		if !ok {
			continue
		}
		result = append(result, FriendEntry{
			EdgeID: e.ID,
			Friend: summary,
			Since:  e.UpdatedAt,
		})
	}
	return result, nil
}

// ListFollowing returns accepted follow edges where userID is the follower.
// User targets are enriched with profile summaries.
func (q *Queries) ListFollowing(ctx context.Context, userID int64, page, pageSize int) ([]FollowEntry, error) {
	offset, limit := q.pageWindow(page, pageSize)

	edges, err := q.follows.ListFollowing(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, 0, len(edges))
	for _, e := range edges {
		if e.TargetType == models.TargetUser {
			userIDs = append(userIDs, e.TargetID)
		}
	}
	summaries, err := q.profileSummaries(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	result := make([]FollowEntry, 0, len(edges))
	for _, e := range edges {
		entry := FollowEntry{
			EdgeID:     e.ID,
			TargetType: e.TargetType,
			TargetID:   e.TargetID,
			Level:      models.LevelName(e.Level),
			Since:      e.CreatedAt,
		}
		if summary, ok := summaries[e.TargetID]; ok && e.TargetType == models.TargetUser {
			entry.Target = &summary
		}
		result = append(result, entry)
	}
	return result, nil
}

// ListFollowers returns accepted follow edges pointing at the target,
// enriched with follower profiles
func (q *Queries) ListFollowers(ctx context.Context, targetType models.TargetType, targetID int64, page, pageSize int) ([]FollowerEntry, error) {
	if !models.ValidTargetType(targetType) {
		return nil, ErrInvalidArgument
	}
	offset, limit := q.pageWindow(page, pageSize)

	edges, err := q.follows.ListFollowers(ctx, targetType, targetID, offset, limit)
	if err != nil {
		return nil, err
	}

	followerIDs := make([]int64, 0, len(edges))
	for _, e := range edges {
		followerIDs = append(followerIDs, e.FollowerID)
	}
	summaries, err := q.profileSummaries(ctx, followerIDs)
	if err != nil {
		return nil, err
	}

	result := make([]FollowerEntry, 0, len(edges))
	for _, e := range edges {
		summary, ok := summaries[e.FollowerID]
		if !ok {
			continue
		}
		result = append(result, FollowerEntry{
			EdgeID:   e.ID,
			Follower: summary,
			Level:    models.LevelName(e.Level),
			Since:    e.CreatedAt,
		})
	}
	return result, nil
}

// FollowerCount returns the number of accepted follow edges pointing at
// the target. Counts are cached in Redis with a short TTL and invalidated
// on the write path.
func (q *Queries) FollowerCount(ctx context.Context, targetType models.TargetType, targetID int64) (int64, error) {
	if !models.ValidTargetType(targetType) {
		return 0, ErrInvalidArgument
	}

	key := cache.FollowerCountKey(string(targetType), targetID)
	if q.cache != nil {
		var cached int64
		if err := q.cache.GetJSON(key, &cached); err == nil {
			return cached, nil
		}
	}

	count, err := q.follows.CountFollowers(ctx, targetType, targetID)
	if err != nil {
		return 0, err
	}

	if q.cache != nil {
		ttl := time.Duration(q.cfg.CountCacheTTL) * time.Second
		if err := q.cache.SetJSON(key, count, ttl); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			q.logger.Warn("Failed to cache follower count", zap.String("key", key), zap.Error(err))
		}
	}

	return count, nil
}

// FollowingCount returns the number of accepted follow edges where userID
// is the follower
func (q *Queries) FollowingCount(ctx context.Context, userID int64) (int64, error) {
	return q.follows.CountFollowing(ctx, userID)
}

// SearchCandidates returns profile matches for the query text, excluding
// the acting user, each annotated with the current relationship status.
// The per-candidate relationship check is a single batched lookup over the
// candidate id set, bounded by the search limit.
func (q *Queries) SearchCandidates(ctx context.Context, actorID int64, queryText string, kind RelationKind, limit int) ([]Candidate, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return []Candidate{}, nil
	}
	if limit <= 0 || limit > q.cfg.SearchLimit {
		limit = q.cfg.SearchLimit
	}

	profiles, err := q.profiles.SearchByName(ctx, queryText, actorID, limit)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []Candidate{}, nil
	}

	candidateIDs := make([]int64, 0, len(profiles))
	for _, p := range profiles {
		candidateIDs = append(candidateIDs, p.ID)
	}

	type annotation struct {
		status  models.EdgeStatus
		subject bool
	}
	annotations := make(map[int64]annotation, len(candidateIDs))

	switch kind {
	case KindFriendship:
		edges, err := q.friendships.ForPairs(ctx, actorID, candidateIDs)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			annotations[e.OtherID(actorID)] = annotation{
				status:  e.Status,
				subject: e.RequesterID == actorID,
			}
		}
	case KindFollow:
		edges, err := q.follows.ForTargets(ctx, actorID, models.TargetUser, candidateIDs)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			// The actor is always the subject of its own follow edges
			annotations[e.TargetID] = annotation{status: e.Status, subject: true}
		}
	default:
		return nil, ErrInvalidArgument
	}

	result := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		c := Candidate{Profile: p.Summary()}
		if a, ok := annotations[p.ID]; ok {
			status := a.status
			c.Status = &status
			c.Subject = a.subject
		}
		result = append(result, c)
	}
	return result, nil
}

func (q *Queries) profileSummaries(ctx context.Context, ids []int64) (map[int64]models.ProfileSummary, error) {
	result := make(map[int64]models.ProfileSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	profiles, err := q.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		result[p.ID] = p.Summary()
	}
	return result, nil
}

func (q *Queries) clampLimit(limit int) int {
	if limit <= 0 || limit > q.cfg.MaxPageSize {
		return q.cfg.DefaultPageSize
	}
	return limit
}

func (q *Queries) pageWindow(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = q.cfg.DefaultPageSize
	}
	if pageSize > q.cfg.MaxPageSize {
		pageSize = q.cfg.MaxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

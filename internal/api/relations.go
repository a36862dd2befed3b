package api

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/peernote/relations/internal/models"
	"github.com/peernote/relations/internal/relations"
)

// RelationsAPI exposes the relationship state machine and query surface as
// JSON-RPC methods. The "actor" parameter carries the authenticated acting
// user id injected by the platform's API gateway.
type RelationsAPI struct {
	service *relations.Service
	queries *relations.Queries
}

// NewRelationsAPI creates a new relations API
func NewRelationsAPI(service *relations.Service, queries *relations.Queries) *RelationsAPI {
	return &RelationsAPI{
		service: service,
		queries: queries,
	}
}

// SendFriendRequest handles relations.send_friend_request
func (a *RelationsAPI) SendFriendRequest(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	target, err := requireID(p, "target")
	if err != nil {
		return nil, err
	}

	edge, err := a.service.SendFriendRequest(c.Request.Context(), actor, target)
	if err != nil {
		return nil, err
	}
	return friendshipPayload(edge), nil
}

// AcceptFriendRequest handles relations.accept_friend_request
func (a *RelationsAPI) AcceptFriendRequest(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	edgeID, err := requireID(p, "id")
	if err != nil {
		return nil, err
	}

	edge, err := a.service.AcceptFriendRequest(c.Request.Context(), actor, edgeID)
	if err != nil {
		return nil, err
	}
	return friendshipPayload(edge), nil
}

// RejectFriendRequest handles relations.reject_friend_request
func (a *RelationsAPI) RejectFriendRequest(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	edgeID, err := requireID(p, "id")
	if err != nil {
		return nil, err
	}

	if err := a.service.RejectFriendRequest(c.Request.Context(), actor, edgeID); err != nil {
		return nil, err
	}
	return gin.H{"rejected": true}, nil
}

// Unfriend handles relations.unfriend
func (a *RelationsAPI) Unfriend(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	target, err := requireID(p, "target")
	if err != nil {
		return nil, err
	}

	if err := a.service.Unfriend(c.Request.Context(), actor, target); err != nil {
		return nil, err
	}
	return gin.H{"removed": true}, nil
}

// ListFriendRequests handles relations.list_friend_requests
func (a *RelationsAPI) ListFriendRequests(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	account, err := requireID(p, "account")
	if err != nil {
		return nil, err
	}
	limit := optInt(p, "limit", 0)

	return a.queries.ListIncomingRequests(c.Request.Context(), account, limit)
}

// ListFriends handles relations.list_friends
func (a *RelationsAPI) ListFriends(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	account, err := requireID(p, "account")
	if err != nil {
		return nil, err
	}
	page := optInt(p, "page", 1)
	pageSize := optInt(p, "page_size", 0)

	return a.queries.ListFriends(c.Request.Context(), account, page, pageSize)
}

// Follow handles relations.follow
func (a *RelationsAPI) Follow(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	target, err := requireID(p, "target")
	if err != nil {
		return nil, err
	}
	targetType := optString(p, "target_type", string(models.TargetUser))
	level := optString(p, "level", "")

	edge, err := a.service.Follow(c.Request.Context(), actor, models.TargetType(targetType), target, level)
	if err != nil {
		return nil, err
	}
	return followPayload(edge), nil
}

// Unfollow handles relations.unfollow
func (a *RelationsAPI) Unfollow(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	target, err := requireID(p, "target")
	if err != nil {
		return nil, err
	}
	targetType := optString(p, "target_type", string(models.TargetUser))

	if err := a.service.Unfollow(c.Request.Context(), actor, models.TargetType(targetType), target); err != nil {
		return nil, err
	}
	return gin.H{"removed": true}, nil
}

// BlockFollower handles relations.block_follower
func (a *RelationsAPI) BlockFollower(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	edgeID, err := requireID(p, "id")
	if err != nil {
		return nil, err
	}

	if err := a.service.BlockFollower(c.Request.Context(), actor, edgeID); err != nil {
		return nil, err
	}
	return gin.H{"blocked": true}, nil
}

// SetFollowLevel handles relations.set_follow_level
func (a *RelationsAPI) SetFollowLevel(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	edgeID, err := requireID(p, "id")
	if err != nil {
		return nil, err
	}
	level := optString(p, "level", "")

	edge, err := a.service.SetFollowLevel(c.Request.Context(), actor, edgeID, level)
	if err != nil {
		return nil, err
	}
	return followPayload(edge), nil
}

// ListFollowing handles relations.list_following
func (a *RelationsAPI) ListFollowing(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	account, err := requireID(p, "account")
	if err != nil {
		return nil, err
	}
	page := optInt(p, "page", 1)
	pageSize := optInt(p, "page_size", 0)

	return a.queries.ListFollowing(c.Request.Context(), account, page, pageSize)
}

// ListFollowers handles relations.list_followers
func (a *RelationsAPI) ListFollowers(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	target, err := requireID(p, "target")
	if err != nil {
		return nil, err
	}
	targetType := optString(p, "target_type", string(models.TargetUser))
	page := optInt(p, "page", 1)
	pageSize := optInt(p, "page_size", 0)

	return a.queries.ListFollowers(c.Request.Context(), models.TargetType(targetType), target, page, pageSize)
}

// GetFollowCount handles relations.get_follow_count
func (a *RelationsAPI) GetFollowCount(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	target, err := requireID(p, "target")
	if err != nil {
		return nil, err
	}
	targetType := models.TargetType(optString(p, "target_type", string(models.TargetUser)))

	followers, err := a.queries.FollowerCount(c.Request.Context(), targetType, target)
	if err != nil {
		return nil, err
	}

	result := gin.H{
		"target":         target,
		"target_type":    targetType,
		"follower_count": followers,
	}
	if targetType == models.TargetUser {
		following, err := a.queries.FollowingCount(c.Request.Context(), target)
		if err != nil {
			return nil, err
		}
		result["following_count"] = following
	}
	return result, nil
}

// SearchCandidates handles relations.search_candidates
func (a *RelationsAPI) SearchCandidates(c *gin.Context, params json.RawMessage) (interface{}, error) {
	p, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	actor, err := requireID(p, "actor")
	if err != nil {
		return nil, err
	}
	query := optString(p, "query", "")
	kind := optString(p, "kind", string(relations.KindFriendship))
	limit := optInt(p, "limit", 0)

	return a.queries.SearchCandidates(c.Request.Context(), actor, query, relations.RelationKind(kind), limit)
}

func friendshipPayload(edge *models.Friendship) gin.H {
	return gin.H{
		"id":         edge.ID,
		"requester":  edge.RequesterID,
		"addressee":  edge.AddresseeID(),
		"status":     edge.Status,
		"created_at": edge.CreatedAt,
		"updated_at": edge.UpdatedAt,
	}
}

func followPayload(edge *models.Follow) gin.H {
	return gin.H{
		"id":          edge.ID,
		"follower":    edge.FollowerID,
		"target_type": edge.TargetType,
		"target":      edge.TargetID,
		"status":      edge.Status,
		"level":       models.LevelName(edge.Level),
		"created_at":  edge.CreatedAt,
		"updated_at":  edge.UpdatedAt,
	}
}

func parseParams(params json.RawMessage) (map[string]interface{}, error) {
	var p map[string]interface{}
	if len(params) == 0 {
		return map[string]interface{}{}, nil
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: invalid parameters format", relations.ErrInvalidArgument)
	}
	return p, nil
}

func requireID(p map[string]interface{}, key string) (int64, error) {
	v, ok := p[key].(float64)
	if !ok || v <= 0 {
		return 0, fmt.Errorf("%w: missing required parameter %q", relations.ErrInvalidArgument, key)
	}
	return int64(v), nil
}

func optInt(p map[string]interface{}, key string, defaultValue int) int {
	if v, ok := p[key].(float64); ok {
		return int(v)
	}
	return defaultValue
}

func optString(p map[string]interface{}, key, defaultValue string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

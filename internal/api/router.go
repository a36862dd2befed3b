package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/peernote/relations/internal/cache"
	"github.com/peernote/relations/internal/db"
	"github.com/peernote/relations/internal/relations"
	"github.com/peernote/relations/pkg/config"
	"github.com/peernote/relations/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	db      *db.DB
	cache   *cache.Cache
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	handler := NewJSONRPCHandler()
	router := &Router{
		handler: handler,
		db:      database,
		cache:   redisCache,
		cfg:     cfg,
		logger:  logging.GetLogger().With(zap.String("component", "api-router")),
	}

	// Register all API methods
	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// JSON-RPC endpoint
	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	repo := db.NewRepository(r.db.DB)
	friendships := db.NewFriendshipRepository(repo)
	follows := db.NewFollowRepository(repo)
	profiles := db.NewProfileRepository(repo)
	notifications := db.NewNotificationRepository(repo)

	service := relations.NewService(friendships, follows, notifications, r.cache)
	queries := relations.NewQueries(friendships, follows, profiles, r.cache, r.cfg.Relations)

	relationsAPI := NewRelationsAPI(service, queries)

	// Friendship state machine
	r.handler.RegisterMethod("relations.send_friend_request", relationsAPI.SendFriendRequest)
	r.handler.RegisterMethod("relations.accept_friend_request", relationsAPI.AcceptFriendRequest)
	r.handler.RegisterMethod("relations.reject_friend_request", relationsAPI.RejectFriendRequest)
	r.handler.RegisterMethod("relations.unfriend", relationsAPI.Unfriend)

	// Follow state machine
	r.handler.RegisterMethod("relations.follow", relationsAPI.Follow)
	r.handler.RegisterMethod("relations.unfollow", relationsAPI.Unfollow)
	r.handler.RegisterMethod("relations.block_follower", relationsAPI.BlockFollower)
	r.handler.RegisterMethod("relations.set_follow_level", relationsAPI.SetFollowLevel)

	// Query surface
	r.handler.RegisterMethod("relations.list_friend_requests", relationsAPI.ListFriendRequests)
	r.handler.RegisterMethod("relations.list_friends", relationsAPI.ListFriends)
	r.handler.RegisterMethod("relations.list_following", relationsAPI.ListFollowing)
	r.handler.RegisterMethod("relations.list_followers", relationsAPI.ListFollowers)
	r.handler.RegisterMethod("relations.get_follow_count", relationsAPI.GetFollowCount)
	r.handler.RegisterMethod("relations.search_candidates", relationsAPI.SearchCandidates)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	status := "OK"
	code := 200

	if err := r.db.Health(c.Request.Context()); err != nil {
		status = "database unavailable"
		code = 503
	}

	cacheStatus := "disabled"
	if r.cache != nil {
		cacheStatus = "OK"
		if err := r.cache.Health(c.Request.Context()); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			cacheStatus = "unavailable"
		}
	}

	c.JSON(code, gin.H{
		"status":  status,
		"cache":   cacheStatus,
		"service": "relations-api",
	})
}

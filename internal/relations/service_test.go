package relations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/peernote/relations/internal/db"
	"github.com/peernote/relations/internal/models"
	"github.com/peernote/relations/internal/relations"
	"github.com/peernote/relations/pkg/config"
)

type testEnv struct {
	gdb     *gorm.DB
	service *relations.Service
	queries *relations.Queries
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := db.NewRepository(gdb)
	friendships := db.NewFriendshipRepository(repo)
	follows := db.NewFollowRepository(repo)
	profiles := db.NewProfileRepository(repo)
	notifications := db.NewNotificationRepository(repo)

	cfg := config.RelationsConfig{
		DefaultPageSize: 50,
		MaxPageSize:     100,
		SearchLimit:     20,
		CountCacheTTL:   60,
	}

	return &testEnv{
		gdb:     gdb,
		service: relations.NewService(friendships, follows, notifications, nil),
		queries: relations.NewQueries(friendships, follows, profiles, nil, cfg),
	}
}

func (e *testEnv) seedProfiles(t *testing.T, usernames ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(usernames))
	for _, name := range usernames {
		p := &models.Profile{Username: name, DisplayName: name}
		if err := e.gdb.Create(p).Error; err != nil {
			t.Fatalf("seed profile %s: %v", name, err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func (e *testEnv) notificationCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := e.gdb.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return count
}

func TestFriendRequestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob")
	alice, bob := ids[0], ids[1]
	ctx := context.Background()

	edge, err := env.service.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, edge.Status)
	require.Equal(t, alice, edge.RequesterID)
	require.Equal(t, bob, edge.AddresseeID())

	// Bob sees the request
	incoming, err := env.queries.ListIncomingRequests(ctx, bob, 0)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	require.Equal(t, "alice", incoming[0].Requester.Username)

	// Alice does not
	incoming, err = env.queries.ListIncomingRequests(ctx, alice, 0)
	require.NoError(t, err)
	require.Empty(t, incoming)

	accepted, err := env.service.AcceptFriendRequest(ctx, bob, edge.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, accepted.Status)

	// Both sides now list each other
	friends, err := env.queries.ListFriends(ctx, alice, 1, 0)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Equal(t, "bob", friends[0].Friend.Username)

	friends, err = env.queries.ListFriends(ctx, bob, 1, 0)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Equal(t, "alice", friends[0].Friend.Username)

	// Request and accept each emitted a notification
	require.Equal(t, int64(2), env.notificationCount(t))
}

func TestSendFriendRequestRejectsSelfAndDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob")
	alice, bob := ids[0], ids[1]
	ctx := context.Background()

	_, err := env.service.SendFriendRequest(ctx, alice, alice)
	require.ErrorIs(t, err, relations.ErrSelfRelationship)

	_, err = env.service.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	_, err = env.service.SendFriendRequest(ctx, alice, bob)
	require.ErrorIs(t, err, relations.ErrDuplicateRequest)

	// The reverse direction hits the same canonical slot
	_, err = env.service.SendFriendRequest(ctx, bob, alice)
	require.ErrorIs(t, err, relations.ErrDuplicateRequest)
}

func TestAcceptFriendRequestPermissions(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]
	ctx := context.Background()

	edge, err := env.service.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	// Neither the requester nor a third party may accept
	_, err = env.service.AcceptFriendRequest(ctx, alice, edge.ID)
	require.ErrorIs(t, err, relations.ErrForbidden)
	_, err = env.service.AcceptFriendRequest(ctx, carol, edge.ID)
	require.ErrorIs(t, err, relations.ErrForbidden)

	_, err = env.service.AcceptFriendRequest(ctx, bob, 9999)
	require.ErrorIs(t, err, relations.ErrNotFound)

	_, err = env.service.AcceptFriendRequest(ctx, bob, edge.ID)
	require.NoError(t, err)

	// Repeated accept finds no pending edge
	_, err = env.service.AcceptFriendRequest(ctx, bob, edge.ID)
	require.ErrorIs(t, err, relations.ErrPreconditionFailed)
}

func TestRejectFriendRequestDeletesEdge(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob")
	alice, bob := ids[0], ids[1]
	ctx := context.Background()

	edge, err := env.service.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	err = env.service.RejectFriendRequest(ctx, alice, edge.ID)
	require.ErrorIs(t, err, relations.ErrForbidden)

	require.NoError(t, env.service.RejectFriendRequest(ctx, bob, edge.ID))

	// Rejection is a hard delete, so alice may ask again
	_, err = env.service.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
}

func TestUnfriend(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob")
	alice, bob := ids[0], ids[1]
	ctx := context.Background()

	edge, err := env.service.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	// Pending edges cannot be unfriended
	err = env.service.Unfriend(ctx, alice, bob)
	require.ErrorIs(t, err, relations.ErrPreconditionFailed)

	_, err = env.service.AcceptFriendRequest(ctx, bob, edge.ID)
	require.NoError(t, err)

	// Either party may remove the friendship
	require.NoError(t, env.service.Unfriend(ctx, bob, alice))

	err = env.service.Unfriend(ctx, bob, alice)
	require.ErrorIs(t, err, relations.ErrNotFound)

	friends, err := env.queries.ListFriends(ctx, alice, 1, 0)
	require.NoError(t, err)
	require.Empty(t, friends)
}

func TestFollowLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob")
	alice, bob := ids[0], ids[1]
	ctx := context.Background()

	edge, err := env.service.Follow(ctx, alice, models.TargetUser, bob, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, edge.Status)
	require.Equal(t, models.LevelPublic, edge.Level)

	count, err := env.queries.FollowerCount(ctx, models.TargetUser, bob)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	_, err = env.service.Follow(ctx, alice, models.TargetUser, bob, "")
	require.ErrorIs(t, err, relations.ErrDuplicateRequest)

	require.NoError(t, env.service.Unfollow(ctx, alice, models.TargetUser, bob))

	count, err = env.queries.FollowerCount(ctx, models.TargetUser, bob)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	err = env.service.Unfollow(ctx, alice, models.TargetUser, bob)
	require.ErrorIs(t, err, relations.ErrNotFound)
}

func TestFollowValidation(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice")
	alice := ids[0]
	ctx := context.Background()

	_, err := env.service.Follow(ctx, alice, "channel", 5, "")
	require.ErrorIs(t, err, relations.ErrInvalidArgument)

	_, err = env.service.Follow(ctx, alice, models.TargetUser, alice, "")
	require.ErrorIs(t, err, relations.ErrSelfRelationship)

	_, err = env.service.Follow(ctx, alice, models.TargetGroup, 5, "emperor")
	require.ErrorIs(t, err, relations.ErrInvalidArgument)

	// User targets ignore the requested level
	bobIDs := env.seedProfiles(t, "bob")
	edge, err := env.service.Follow(ctx, alice, models.TargetUser, bobIDs[0], "admin")
	require.NoError(t, err)
	require.Equal(t, models.LevelPublic, edge.Level)

	// Collective targets keep it
	edge, err = env.service.Follow(ctx, alice, models.TargetGroup, 5, "member")
	require.NoError(t, err)
	require.Equal(t, models.LevelMember, edge.Level)
}

func TestBlockFollower(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]
	ctx := context.Background()

	edge, err := env.service.Follow(ctx, alice, models.TargetUser, bob, "")
	require.NoError(t, err)

	// Only the followed user may block
	err = env.service.BlockFollower(ctx, carol, edge.ID)
	require.ErrorIs(t, err, relations.ErrForbidden)
	err = env.service.BlockFollower(ctx, alice, edge.ID)
	require.ErrorIs(t, err, relations.ErrForbidden)

	require.NoError(t, env.service.BlockFollower(ctx, bob, edge.ID))

	// Blocked edge drops out of the follower count
	count, err := env.queries.FollowerCount(ctx, models.TargetUser, bob)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	// The blocked edge still occupies the slot, so re-follow collides
	_, err = env.service.Follow(ctx, alice, models.TargetUser, bob, "")
	require.ErrorIs(t, err, relations.ErrDuplicateRequest)

	// Blocking twice finds no accepted edge
	err = env.service.BlockFollower(ctx, bob, edge.ID)
	require.ErrorIs(t, err, relations.ErrPreconditionFailed)

	// The follower may still clear its own blocked edge
	require.NoError(t, env.service.Unfollow(ctx, alice, models.TargetUser, bob))
}

func TestSetFollowLevel(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob")
	alice, bob := ids[0], ids[1]
	ctx := context.Background()

	groupEdge, err := env.service.Follow(ctx, alice, models.TargetGroup, 5, "member")
	require.NoError(t, err)
	userEdge, err := env.service.Follow(ctx, alice, models.TargetUser, bob, "")
	require.NoError(t, err)

	_, err = env.service.SetFollowLevel(ctx, alice, groupEdge.ID, "sovereign")
	require.ErrorIs(t, err, relations.ErrInvalidArgument)

	// Only the follower, and only on collective targets
	_, err = env.service.SetFollowLevel(ctx, bob, groupEdge.ID, "moderator")
	require.ErrorIs(t, err, relations.ErrForbidden)
	_, err = env.service.SetFollowLevel(ctx, alice, userEdge.ID, "moderator")
	require.ErrorIs(t, err, relations.ErrForbidden)

	updated, err := env.service.SetFollowLevel(ctx, alice, groupEdge.ID, "moderator")
	require.NoError(t, err)
	require.Equal(t, models.LevelModerator, updated.Level)
}

func TestFollowNotifiesUserTargetsOnly(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seedProfiles(t, "alice", "bob")
	alice, bob := ids[0], ids[1]
	ctx := context.Background()

	_, err := env.service.Follow(ctx, alice, models.TargetGroup, 5, "member")
	require.NoError(t, err)
	require.Equal(t, int64(0), env.notificationCount(t))

	_, err = env.service.Follow(ctx, alice, models.TargetUser, bob, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), env.notificationCount(t))

	var n models.Notification
	require.NoError(t, env.gdb.First(&n).Error)
	require.Equal(t, models.NotifyTypeFollow, n.Type)
	require.Equal(t, alice, n.SrcID.Int64)
	require.Equal(t, bob, n.DstID.Int64)
}

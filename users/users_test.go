package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talon/database"
	"talon/errs"
	"talon/types"
	"talon/users"
)

var errBoom = errors.New("boom")

func newDirectory(t *testing.T) (*users.Directory, *database.Memory) {
	t.Helper()

	mem := database.NewMemory()

	return users.New(mem, zap.NewNop()), mem
}

func signup(t *testing.T, d *users.Directory, name, email string) *types.User {
	t.Helper()

	user, err := d.Create(context.Background(), users.CreateParams{
		FullName: name,
		Email:    email,
		Password: "hashed",
		Location: "NYC",
		DOB:      "1990-01-01",
	})
	require.NoError(t, err)

	return user
}

func TestCreateRequiresMandatoryFields(t *testing.T) {
	d, _ := newDirectory(t)

	_, err := d.Create(context.Background(), users.CreateParams{
		FullName: "No Email",
		Password: "hashed",
		Location: "NYC",
		DOB:      "1990-01-01",
	})
	assert.True(t, errs.IsKind(err, errs.Validation))
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	d, _ := newDirectory(t)

	signup(t, d, "First", "dup@example.com")

	_, err := d.Create(context.Background(), users.CreateParams{
		FullName: "Second",
		Email:    "dup@example.com",
		Password: "hashed",
		Location: "LA",
		DOB:      "1991-02-02",
	})
	assert.True(t, errs.IsKind(err, errs.Conflict))
}

func TestCreateInitialisesEmptyGraph(t *testing.T) {
	d, _ := newDirectory(t)

	user := signup(t, d, "Fresh", "fresh@example.com")

	assert.NotNil(t, user.Followers)
	assert.NotNil(t, user.Following)
	assert.Empty(t, user.Followers)
	assert.Empty(t, user.Following)
}

func TestAuthenticate(t *testing.T) {
	d, _ := newDirectory(t)
	ctx := context.Background()

	created := signup(t, d, "Login", "login@example.com")

	user, err := d.Authenticate(ctx, "login@example.com", "hashed")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// Unknown email and wrong password share one outcome.
	_, err = d.Authenticate(ctx, "login@example.com", "wrong")
	assert.True(t, errs.IsKind(err, errs.Unauthorized))

	_, err = d.Authenticate(ctx, "nobody@example.com", "hashed")
	assert.True(t, errs.IsKind(err, errs.Unauthorized))
}

func TestUpdateProfileSkipsNilFields(t *testing.T) {
	d, _ := newDirectory(t)
	ctx := context.Background()

	user := signup(t, d, "Before", "update@example.com")

	bio := "new bio"

	updated, err := d.UpdateProfile(ctx, user.ID, users.UpdateParams{Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, "new bio", updated.Bio)
	assert.Equal(t, "Before", updated.FullName)
	assert.Equal(t, "NYC", updated.Location)
}

func TestFollowWritesBothSides(t *testing.T) {
	d, mem := newDirectory(t)
	ctx := context.Background()

	follower := signup(t, d, "Follower", "f@example.com")
	target := signup(t, d, "Target", "t@example.com")

	refreshed, err := d.Follow(ctx, follower.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{target.ID}, refreshed.Following)

	other, err := mem.Users().Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{follower.ID}, other.Followers)
}

func TestFollowTwiceAppendsTwiceOnBothSides(t *testing.T) {
	// The graph sets are multisets: following twice records two entries on
	// each side, keeping the redundant sets consistent with each other.
	d, mem := newDirectory(t)
	ctx := context.Background()

	follower := signup(t, d, "Follower", "f2@example.com")
	target := signup(t, d, "Target", "t2@example.com")

	_, err := d.Follow(ctx, follower.ID, target.ID)
	require.NoError(t, err)

	refreshed, err := d.Follow(ctx, follower.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{target.ID, target.ID}, refreshed.Following)

	other, err := mem.Users().Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{follower.ID, follower.ID}, other.Followers)
}

func TestSelfFollowRejected(t *testing.T) {
	d, _ := newDirectory(t)

	user := signup(t, d, "Loner", "self@example.com")

	_, err := d.Follow(context.Background(), user.ID, user.ID)
	assert.True(t, errs.IsKind(err, errs.Validation))

	_, err = d.Unfollow(context.Background(), user.ID, user.ID)
	assert.True(t, errs.IsKind(err, errs.Validation))
}

func TestUnfollowRestoresBothSides(t *testing.T) {
	d, mem := newDirectory(t)
	ctx := context.Background()

	follower := signup(t, d, "Follower", "f3@example.com")
	target := signup(t, d, "Target", "t3@example.com")

	_, err := d.Follow(ctx, follower.ID, target.ID)
	require.NoError(t, err)

	refreshed, err := d.Unfollow(ctx, follower.ID, target.ID)
	require.NoError(t, err)
	assert.Empty(t, refreshed.Following)

	other, err := mem.Users().Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Followers)
}

func TestFollowMissingFollowerRollsBack(t *testing.T) {
	d, mem := newDirectory(t)
	ctx := context.Background()

	target := signup(t, d, "Target", "t4@example.com")

	_, err := d.Follow(ctx, uuid.New(), target.ID)
	require.True(t, errs.IsKind(err, errs.NotFound))

	// The target write inside the transaction was rolled back.
	other, err := mem.Users().Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Followers)
}

func TestFollowSagaChecksFollowerBeforeWriting(t *testing.T) {
	d, mem := newDirectory(t)
	ctx := context.Background()

	target := signup(t, d, "Target", "t5@example.com")

	mem.DisableTransactions()

	_, err := d.Follow(ctx, uuid.New(), target.ID)
	require.True(t, errs.IsKind(err, errs.NotFound))

	other, err := mem.Users().Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Followers)
}

func TestFollowSagaCompensatesWhenSecondWriteFails(t *testing.T) {
	d, mem := newDirectory(t)
	ctx := context.Background()

	follower := signup(t, d, "Follower", "f6@example.com")
	target := signup(t, d, "Target", "t6@example.com")

	mem.DisableTransactions()
	mem.FailOn(database.OpUserUpdate, 2, errBoom)

	_, err := d.Follow(ctx, follower.ID, target.ID)
	require.True(t, errs.IsKind(err, errs.Storage))

	// The compensation pulled the follower back out of the target's set.
	other, err := mem.Users().Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Followers)

	self, err := mem.Users().Get(ctx, follower.ID)
	require.NoError(t, err)
	assert.Empty(t, self.Following)
}

func TestFollowSagaSurfacesPartialFailure(t *testing.T) {
	// Second write fails, then the compensating write fails too: the target
	// keeps a follower entry the follower's own record never gained. The
	// asymmetry is reported as PartialFailure.
	d, mem := newDirectory(t)
	ctx := context.Background()

	follower := signup(t, d, "Follower", "f7@example.com")
	target := signup(t, d, "Target", "t7@example.com")

	mem.DisableTransactions()
	mem.FailOn(database.OpUserUpdate, 2, errBoom)
	mem.FailOn(database.OpUserUpdate, 1, errBoom)

	_, err := d.Follow(ctx, follower.ID, target.ID)
	require.True(t, errs.IsKind(err, errs.PartialFailure))

	other, err := mem.Users().Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{follower.ID}, other.Followers)

	self, err := mem.Users().Get(ctx, follower.ID)
	require.NoError(t, err)
	assert.Empty(t, self.Following)
}

func TestUnfollowSagaRestoresPriorFollowersOnCompensation(t *testing.T) {
	d, mem := newDirectory(t)
	ctx := context.Background()

	follower := signup(t, d, "Follower", "f8@example.com")
	target := signup(t, d, "Target", "t8@example.com")

	_, err := d.Follow(ctx, follower.ID, target.ID)
	require.NoError(t, err)

	mem.DisableTransactions()
	mem.FailOn(database.OpUserUpdate, 2, errBoom)

	_, err = d.Unfollow(ctx, follower.ID, target.ID)
	require.True(t, errs.IsKind(err, errs.Storage))

	// The compensation restored the snapshot of the target's followers
	// taken before the pull.
	other, err := mem.Users().Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{follower.ID}, other.Followers)

	self, err := mem.Users().Get(ctx, follower.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{target.ID}, self.Following)
}

package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProfile(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	user := env.SeedUser(t, "voter@example.com", models.RoleVoter)

	got, err := env.Services.Users.Profile(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "voter@example.com", got.Email)

	_, err = env.Services.Users.Profile(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	updated, err := env.Services.Users.UpdateProfile(ctx, user.ID.Hex(), services.ProfileInput{
		FullName: " Renamed ",
		Street:   "2 High St",
		City:     "Shelbyville",
		State:    "State",
		ZipCode:  "54321",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FullName)
	assert.Equal(t, "Shelbyville", updated.Address.City)
	assert.Equal(t, user.Email, updated.Email)

	_, err = env.Services.Users.UpdateProfile(ctx, user.ID.Hex(), services.ProfileInput{FullName: "x"})
	assert.EqualError(t, err, "street is required")
}

func TestVotingHistory(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	voter := env.SeedUser(t, "voter@example.com", models.RoleVoter)

	history, err := env.Services.Users.VotingHistory(ctx, voter.ID.Hex())
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)

	first, alice, _ := env.ActiveElection(t)
	second, _, bob := env.ActiveElection(t)
	require.NoError(t, env.Services.Voting.CastVote(ctx, voter.ID.Hex(), first.ID.Hex(), alice.ID.Hex()))
	require.NoError(t, env.Services.Voting.CastVote(ctx, voter.ID.Hex(), second.ID.Hex(), bob.ID.Hex()))

	history, err = env.Services.Users.VotingHistory(ctx, voter.ID.Hex())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].Election.ID)
	assert.Equal(t, second.ID, history[1].Election.ID)
	assert.Equal(t, testutil.Now, history[0].VotedAt)
}

func TestAdminUserManagement(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	user := env.SeedUser(t, "voter@example.com", models.RoleVoter)
	env.SeedUser(t, "admin@example.com", models.RoleAdmin)

	users, err := env.Services.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}

	verified, err := env.Services.Users.SetVerified(ctx, user.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	_, err = env.Services.Users.SetVerified(ctx, primitive.NewObjectID().Hex(), true)
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = env.Services.Users.ProofURL(ctx, user.ID.Hex())
	assert.ErrorIs(t, err, services.ErrProofNotFound)
}

func TestProofURL(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	in := validRegistration()
	in.Document = &services.Document{
		Filename:    "scan.png",
		ContentType: "image/png",
		Size:        3,
		Body:        strings.NewReader("png"),
	}
	user, err := env.Services.Auth.Register(ctx, in)
	require.NoError(t, err)

	url, err := env.Services.Users.ProofURL(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Contains(t, url, user.IDProofObject)
	assert.Contains(t, url, "expires=10m0s")
}

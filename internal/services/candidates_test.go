package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateConstituency(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	c, err := env.Services.Constituencies.Create(ctx, services.ConstituencyInput{Name: " Riverside ", Region: "North"})
	require.NoError(t, err)
	assert.Equal(t, "Riverside", c.Name)
	assert.Zero(t, c.TotalVoters)

	_, err = env.Services.Constituencies.Create(ctx, services.ConstituencyInput{Name: "Riverside", Region: "South"})
	assert.ErrorIs(t, err, services.ErrConstituencyExists)

	_, err = env.Services.Constituencies.Create(ctx, services.ConstituencyInput{Name: "Hills"})
	assert.EqualError(t, err, "region is required")

	_, err = env.Services.Constituencies.Create(ctx, services.ConstituencyInput{Name: "Airport", Region: "East"})
	require.NoError(t, err)

	refs, err := env.Services.Constituencies.List(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "Airport", refs[0].Name)
	assert.Equal(t, "Riverside", refs[1].Name)
}

func TestCreateAndListCandidates(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	north := env.SeedConstituency(t, "North")
	south := env.SeedConstituency(t, "South")

	for _, in := range []services.CandidateInput{
		{Name: "Zed", Constituency: north.ID.Hex()},
		{Name: "Amy", Constituency: north.ID.Hex()},
		{Name: "Kim", Constituency: south.ID.Hex()},
	} {
		c, err := env.Services.Candidates.Create(ctx, in)
		require.NoError(t, err)
		assert.Zero(t, c.Votes)
		assert.Empty(t, c.Elections)
	}

	all, err := env.Services.Candidates.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Amy", all[0].Name)
	assert.Equal(t, "North", all[0].Constituency.Name)

	filtered, err := env.Services.Candidates.List(ctx, south.ID.Hex())
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Kim", filtered[0].Name)

	_, err = env.Services.Candidates.List(ctx, "bad")
	assert.ErrorIs(t, err, services.ErrInvalidID)

	_, err = env.Services.Candidates.Create(ctx, services.CandidateInput{Name: "Ghost", Constituency: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, services.ErrConstituencyNotFound)

	_, err = env.Services.Candidates.Create(ctx, services.CandidateInput{Constituency: north.ID.Hex()})
	assert.EqualError(t, err, "name is required")
}

func TestApplyForElection(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	user := env.SeedUser(t, "hopeful@example.com", models.RoleVoter)
	c := env.SeedConstituency(t, "Riverside")
	upcoming := env.SeedElection(t, "Next", c.ID, testutil.Now.Add(24*time.Hour), testutil.Now.Add(48*time.Hour))

	in := services.ApplicationInput{
		Name:             "Hope Ful",
		PartyAffiliation: "Independent",
		Manifesto:        "Parks for everyone",
		Photo:            "https://example.com/hope.png",
	}
	cand, err := env.Services.Candidates.Apply(ctx, user.ID.Hex(), upcoming.ID.Hex(), in)
	require.NoError(t, err)
	assert.Equal(t, c.ID, cand.Constituency)
	require.NotNil(t, cand.AppliedBy)
	assert.Equal(t, user.ID, *cand.AppliedBy)

	got, _ := env.Elections.FindByID(ctx, upcoming.ID)
	assert.Contains(t, got.Candidates, cand.ID)

	_, err = env.Services.Candidates.Apply(ctx, user.ID.Hex(), upcoming.ID.Hex(), in)
	assert.ErrorIs(t, err, services.ErrAlreadyApplied)
}

func TestApplyRejections(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.SeedUser(t, "hopeful@example.com", models.RoleVoter)
	active, _, _ := env.ActiveElection(t)
	upcoming := env.SeedElection(t, "Next", active.Constituency, testutil.Now.Add(24*time.Hour), testutil.Now.Add(48*time.Hour))

	tests := []struct {
		name     string
		election string
		in       services.ApplicationInput
		want     string
	}{
		{"active election", active.ID.Hex(), services.ApplicationInput{Name: "A"}, services.ErrApplicationsClosed.Message},
		{"missing election", primitive.NewObjectID().Hex(), services.ApplicationInput{Name: "A"}, services.ErrElectionNotFound.Message},
		{"missing name", upcoming.ID.Hex(), services.ApplicationInput{}, "name is required"},
		{"bad photo url", upcoming.ID.Hex(), services.ApplicationInput{Name: "A", Photo: "not a url"}, "photo is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Services.Candidates.Apply(context.Background(), user.ID.Hex(), tt.election, tt.in)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestApplyRetriesAfterAttachFailure(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	user := env.SeedUser(t, "hopeful@example.com", models.RoleVoter)
	c := env.SeedConstituency(t, "Riverside")
	upcoming := env.SeedElection(t, "Next", c.ID, testutil.Now.Add(24*time.Hour), testutil.Now.Add(48*time.Hour))
	in := services.ApplicationInput{Name: "Hope Ful"}

	env.Elections.FailAddCandidate = errors.New("connection reset")
	_, err := env.Services.Candidates.Apply(ctx, user.ID.Hex(), upcoming.ID.Hex(), in)
	require.Error(t, err)
	var svcErr *services.Error
	assert.False(t, errors.As(err, &svcErr), "store failures are internal")

	left, err := env.Candidates.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, left)

	env.Elections.FailAddCandidate = nil
	cand, err := env.Services.Candidates.Apply(ctx, user.ID.Hex(), upcoming.ID.Hex(), in)
	require.NoError(t, err)
	got, _ := env.Elections.FindByID(ctx, upcoming.ID)
	assert.Equal(t, []primitive.ObjectID{cand.ID}, got.Candidates)
}

func TestApplyConcurrentlyCreatesOneApplication(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	user := env.SeedUser(t, "hopeful@example.com", models.RoleVoter)
	c := env.SeedConstituency(t, "Riverside")
	upcoming := env.SeedElection(t, "Next", c.ID, testutil.Now.Add(24*time.Hour), testutil.Now.Add(48*time.Hour))

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.Services.Candidates.Apply(ctx, user.ID.Hex(), upcoming.ID.Hex(), services.ApplicationInput{Name: "Hope Ful"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, services.ErrAlreadyApplied)
	}
	assert.Equal(t, 1, succeeded)

	all, err := env.Candidates.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateElectionStatus(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  string
	}{
		{"future", testutil.Now.Add(24 * time.Hour), testutil.Now.Add(48 * time.Hour), models.StatusUpcoming},
		{"running", testutil.Now.Add(-time.Hour), testutil.Now.Add(time.Hour), models.StatusActive},
		{"starts now", testutil.Now, testutil.Now.Add(time.Hour), models.StatusActive},
		{"past", testutil.Now.Add(-48 * time.Hour), testutil.Now.Add(-24 * time.Hour), models.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			c := env.SeedConstituency(t, "Riverside")

			e, err := env.Services.Elections.Create(context.Background(), services.ElectionInput{
				Title:        "Mayor",
				Description:  "City mayor",
				Constituency: c.ID.Hex(),
				StartDate:    tt.start.Format(time.RFC3339),
				EndDate:      tt.end.Format(time.RFC3339),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Status)
			assert.Zero(t, e.TotalVotes)
			assert.Empty(t, e.Candidates)
		})
	}
}

func TestCreateElectionLinksReferences(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	c := env.SeedConstituency(t, "Riverside")
	a := env.SeedCandidate(t, "Alice", c.ID)

	e, err := env.Services.Elections.Create(ctx, services.ElectionInput{
		Title:        "Mayor",
		Description:  "City mayor",
		Constituency: c.ID.Hex(),
		StartDate:    "2026-06-01",
		EndDate:      "2026-06-02T18:00",
		Candidates:   []string{a.ID.Hex(), a.ID.Hex()},
	})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a.ID}, e.Candidates)
	assert.Equal(t, time.Date(2026, 6, 2, 18, 0, 0, 0, time.UTC), e.EndDate)

	gotC, _ := env.Constituencies.FindByID(ctx, c.ID)
	gotA, _ := env.Candidates.FindByID(ctx, a.ID)
	assert.Contains(t, gotC.ActiveElections, e.ID)
	assert.Contains(t, gotA.Elections, e.ID)
}

func TestCreateElectionRejections(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.SeedConstituency(t, "Riverside")

	valid := func() services.ElectionInput {
		return services.ElectionInput{
			Title:        "Mayor",
			Description:  "City mayor",
			Constituency: c.ID.Hex(),
			StartDate:    "2026-06-01",
			EndDate:      "2026-06-02",
		}
	}

	tests := []struct {
		name    string
		mutate  func(in *services.ElectionInput)
		wantMsg string
	}{
		{"missing title", func(in *services.ElectionInput) { in.Title = "  " }, "title is required"},
		{"end before start", func(in *services.ElectionInput) { in.EndDate = "2026-05-30" }, services.ErrEndBeforeStart.Message},
		{"end equals start", func(in *services.ElectionInput) { in.EndDate = in.StartDate }, services.ErrEndBeforeStart.Message},
		{"bad start", func(in *services.ElectionInput) { in.StartDate = "June" }, "Invalid start date"},
		{"unknown constituency", func(in *services.ElectionInput) { in.Constituency = primitive.NewObjectID().Hex() }, services.ErrConstituencyNotFound.Message},
		{"unknown candidate", func(in *services.ElectionInput) { in.Candidates = []string{primitive.NewObjectID().Hex()} }, services.ErrCandidateNotFound.Message},
		{"malformed candidate", func(in *services.ElectionInput) { in.Candidates = []string{"x"} }, services.ErrInvalidID.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)

			_, err := env.Services.Elections.Create(context.Background(), in)
			var se *services.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, services.KindInvalid, se.Kind)
			assert.Equal(t, tt.wantMsg, se.Message)
		})
	}

	all, err := env.Services.Elections.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListAndGetElections(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	c := env.SeedConstituency(t, "Riverside")
	a := env.SeedCandidate(t, "Alice", c.ID)
	older := env.SeedElection(t, "Older", c.ID, testutil.Now.Add(-72*time.Hour), testutil.Now.Add(-48*time.Hour))
	newer := env.SeedElection(t, "Newer", c.ID, testutil.Now.Add(-time.Hour), testutil.Now.Add(time.Hour), a.ID)

	list, err := env.Services.Elections.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	require.NotNil(t, list[0].Constituency)
	assert.Equal(t, "Riverside", list[0].Constituency.Name)

	detail, err := env.Services.Elections.Get(ctx, newer.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Newer", detail.Title)
	assert.Equal(t, c.ID, detail.Constituency.ID)
	require.Len(t, detail.Candidates, 1)
	assert.Equal(t, "Alice", detail.Candidates[0].Name)

	_, err = env.Services.Elections.Get(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrElectionNotFound)

	_, err = env.Services.Elections.Get(ctx, "bogus")
	assert.ErrorIs(t, err, services.ErrInvalidID)
}

func TestUpcomingElections(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.SeedConstituency(t, "Riverside")

	env.SeedElection(t, "Done", c.ID, testutil.Now.Add(-72*time.Hour), testutil.Now.Add(-48*time.Hour))
	running := env.SeedElection(t, "Running", c.ID, testutil.Now.Add(-time.Hour), testutil.Now.Add(time.Hour))
	for i := 1; i <= 6; i++ {
		start := testutil.Now.Add(time.Duration(i) * 24 * time.Hour)
		env.SeedElection(t, "Future", c.ID, start, start.Add(time.Hour))
	}

	got, err := env.Services.Elections.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, got, services.UpcomingLimit)
	assert.Equal(t, running.ID, got[0].ID)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].StartDate.Before(got[i-1].StartDate))
		assert.NotEqual(t, models.StatusCompleted, got[i].Status)
	}
}

func TestHasVoted(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	voter := env.SeedUser(t, "voter@example.com", models.RoleVoter)
	election, alice, _ := env.ActiveElection(t)

	voted, err := env.Services.Elections.HasVoted(ctx, voter.ID.Hex(), election.ID.Hex())
	require.NoError(t, err)
	assert.False(t, voted)

	require.NoError(t, env.Services.Voting.CastVote(ctx, voter.ID.Hex(), election.ID.Hex(), alice.ID.Hex()))

	voted, err = env.Services.Elections.HasVoted(ctx, voter.ID.Hex(), election.ID.Hex())
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestSyncStatuses(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	c := env.SeedConstituency(t, "Riverside")

	stale := &models.Election{
		ID:           primitive.NewObjectID(),
		Title:        "Stale",
		Constituency: c.ID,
		StartDate:    testutil.Now.Add(-2 * time.Hour),
		EndDate:      testutil.Now.Add(-time.Hour),
		Status:       models.StatusActive,
	}
	require.NoError(t, env.Elections.Create(ctx, stale))
	env.SeedElection(t, "Fresh", c.ID, testutil.Now.Add(-time.Hour), testutil.Now.Add(time.Hour))

	n, err := env.Services.Elections.SyncStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _ := env.Elections.FindByID(ctx, stale.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)

	n, err = env.Services.Elections.SyncStatuses(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAudit(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	election, alice, bob := env.ActiveElection(t)

	for i, candidate := range []*models.Candidate{alice, bob, alice} {
		u := env.SeedUser(t, "voter"+string(rune('a'+i))+"@example.com", models.RoleVoter)
		require.NoError(t, env.Services.Voting.CastVote(ctx, u.ID.Hex(), election.ID.Hex(), candidate.ID.Hex()))
	}

	a, err := env.Services.Elections.Audit(ctx, election.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.TotalVotes)
	assert.Equal(t, int64(3), a.CandidateVotes)
	assert.Equal(t, int64(3), a.HistoryEntries)
	assert.True(t, a.Consistent)

	// A counter drifting from the histories is reported.
	require.NoError(t, env.Elections.IncrementVotes(ctx, election.ID, 1))
	all, err := env.Services.Elections.AuditAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(4), all[0].TotalVotes)
	assert.False(t, all[0].Consistent)
}

func TestAuditCandidateInTwoElections(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	first, alice, _ := env.ActiveElection(t)
	second := env.SeedElection(t, "Second", first.Constituency, testutil.Now.Add(-time.Hour), testutil.Now.Add(time.Hour), alice.ID)

	for i, election := range []*models.Election{first, second} {
		u := env.SeedUser(t, "voter"+string(rune('a'+i))+"@example.com", models.RoleVoter)
		require.NoError(t, env.Services.Voting.CastVote(ctx, u.ID.Hex(), election.ID.Hex(), alice.ID.Hex()))
	}

	a, err := env.Services.Elections.Audit(ctx, second.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.TotalVotes)
	assert.Equal(t, int64(1), a.HistoryEntries)
	assert.Equal(t, int64(2), a.CandidateVotes)
	assert.False(t, a.Consistent)
}

func TestRunStatusSyncRunsAtStartup(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.SeedConstituency(t, "Riverside")
	stale := &models.Election{
		ID:           primitive.NewObjectID(),
		Title:        "Stale",
		Constituency: c.ID,
		StartDate:    testutil.Now.Add(-2 * time.Hour),
		EndDate:      testutil.Now.Add(-time.Hour),
		Status:       models.StatusActive,
	}
	require.NoError(t, env.Elections.Create(context.Background(), stale))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.Services.Elections.RunStatusSync(ctx, time.Hour)

	assert.Eventually(t, func() bool {
		got, err := env.Elections.FindByID(context.Background(), stale.ID)
		return err == nil && got.Status == models.StatusCompleted
	}, time.Second, 5*time.Millisecond)
}

func TestRunStatusSyncStopsOnCancel(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		env.Services.Elections.RunStatusSync(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("status sync did not stop after cancel")
	}
}

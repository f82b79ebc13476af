package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/auth"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Now is the fixed clock every Env runs on.
var Now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

const TestPassword = "password123"

// Env bundles fresh in-memory stores and the services built on them.
type Env struct {
	Users          *Users
	Constituencies *Constituencies
	Candidates     *Candidates
	Elections      *Elections
	Proofs         *Proofs
	Tokens         *auth.TokenIssuer
	Services       *services.Services
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	e := &Env{
		Users:          NewUsers(),
		Constituencies: NewConstituencies(),
		Candidates:     NewCandidates(),
		Elections:      NewElections(),
		Proofs:         NewProofs(),
		Tokens:         auth.NewTokenIssuer("test-secret", time.Hour),
	}
	e.Services = services.New(services.Deps{
		Users:          e.Users,
		Constituencies: e.Constituencies,
		Candidates:     e.Candidates,
		Elections:      e.Elections,
		Proofs:         e.Proofs,
		Tokens:         e.Tokens,
		Now:            func() time.Time { return Now },
	})
	return e
}

// SeedUser stores a user whose password is TestPassword.
func (e *Env) SeedUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		ID:            primitive.NewObjectID(),
		Email:         email,
		Password:      hash,
		FullName:      "Test " + role,
		DateOfBirth:   time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		IDProof:       "ID-0001",
		Role:          role,
		VotingHistory: []models.VoteRecord{},
		CreatedAt:     Now,
		UpdatedAt:     Now,
	}
	if err := e.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// Token issues a session token for the user.
func (e *Env) Token(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := e.Tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *Env) SeedConstituency(t *testing.T, name string) *models.Constituency {
	t.Helper()
	c := &models.Constituency{
		ID:              primitive.NewObjectID(),
		Name:            name,
		Region:          "North",
		ActiveElections: []primitive.ObjectID{},
		CreatedAt:       Now,
	}
	if err := e.Constituencies.Create(context.Background(), c); err != nil {
		t.Fatalf("seed constituency: %v", err)
	}
	return c
}

func (e *Env) SeedCandidate(t *testing.T, name string, constituency primitive.ObjectID) *models.Candidate {
	t.Helper()
	c := &models.Candidate{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Constituency: constituency,
		Elections:    []primitive.ObjectID{},
		CreatedAt:    Now,
	}
	if err := e.Candidates.Create(context.Background(), c); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return c
}

// SeedElection stores an election running from start to end, with the status
// those dates imply at Now.
func (e *Env) SeedElection(t *testing.T, title string, constituency primitive.ObjectID, start, end time.Time, candidates ...primitive.ObjectID) *models.Election {
	t.Helper()
	if candidates == nil {
		candidates = []primitive.ObjectID{}
	}
	el := &models.Election{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Description:  title + " description",
		Constituency: constituency,
		StartDate:    start,
		EndDate:      end,
		Candidates:   candidates,
		Status:       models.StatusAt(start, end, Now),
		CreatedAt:    Now,
	}
	if err := e.Elections.Create(context.Background(), el); err != nil {
		t.Fatalf("seed election: %v", err)
	}
	ids := append([]primitive.ObjectID(nil), candidates...)
	_ = e.Candidates.AddElection(context.Background(), ids, el.ID)
	return el
}

// ActiveElection seeds a constituency, two candidates and an election open at Now.
func (e *Env) ActiveElection(t *testing.T) (*models.Election, *models.Candidate, *models.Candidate) {
	t.Helper()
	c := e.SeedConstituency(t, "Central-"+primitive.NewObjectID().Hex()[18:])
	a := e.SeedCandidate(t, "Alice", c.ID)
	b := e.SeedCandidate(t, "Bob", c.ID)
	el := e.SeedElection(t, "General", c.ID, Now.Add(-time.Hour), Now.Add(time.Hour), a.ID, b.ID)
	return el, a, b
}

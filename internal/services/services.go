// Package services implements the election portal's business operations on
// top of the store interfaces declared here.
package services

import (
	"context"
	"io"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/auth"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
	SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	AppendVote(ctx context.Context, userID, electionID primitive.ObjectID, at time.Time) error
	RemoveVote(ctx context.Context, userID, electionID primitive.ObjectID) error
	HasVoted(ctx context.Context, userID, electionID primitive.ObjectID) (bool, error)
	CountVoters(ctx context.Context, electionID primitive.ObjectID) (int64, error)
}

type ConstituencyStore interface {
	Create(ctx context.Context, c *models.Constituency) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error)
	FindByName(ctx context.Context, name string) (*models.Constituency, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Constituency, error)
	List(ctx context.Context) ([]models.Constituency, error)
	AddElection(ctx context.Context, id, electionID primitive.ObjectID) error
	IncrementVoters(ctx context.Context, id primitive.ObjectID, delta int64) error
}

type CandidateStore interface {
	Create(ctx context.Context, c *models.Candidate) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Candidate, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Candidate, error)
	List(ctx context.Context, constituency *primitive.ObjectID) ([]models.Candidate, error)
	FindApplication(ctx context.Context, electionID, userID primitive.ObjectID) (*models.Candidate, error)
	AddElection(ctx context.Context, ids []primitive.ObjectID, electionID primitive.ObjectID) error
	IncrementVotes(ctx context.Context, id primitive.ObjectID, delta int64) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ElectionStore interface {
	Create(ctx context.Context, e *models.Election) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Election, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Election, error)
	List(ctx context.Context) ([]models.Election, error)
	Upcoming(ctx context.Context, now time.Time, limit int64) ([]models.Election, error)
	AddCandidate(ctx context.Context, id, candidateID primitive.ObjectID) error
	IncrementVotes(ctx context.Context, id primitive.ObjectID, delta int64) error
	SyncStatuses(ctx context.Context, now time.Time) (int64, error)
}

// ProofStore holds uploaded identity documents.
type ProofStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Deps wires the services to their backends. Proofs may be nil, in which
// case document uploads are refused.
type Deps struct {
	Users          UserStore
	Constituencies ConstituencyStore
	Candidates     CandidateStore
	Elections      ElectionStore
	Proofs         ProofStore
	Tokens         *auth.TokenIssuer
	Now            func() time.Time
}

type Services struct {
	Auth           *AuthService
	Users          *UserService
	Constituencies *ConstituencyService
	Candidates     *CandidateService
	Elections      *ElectionService
	Voting         *VotingService
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Services{
		Auth:           &AuthService{d: d},
		Users:          &UserService{d: d},
		Constituencies: &ConstituencyService{d: d},
		Candidates:     &CandidateService{d: d},
		Elections:      &ElectionService{d: d},
		Voting:         &VotingService{d: d},
	}
}

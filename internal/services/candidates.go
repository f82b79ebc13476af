package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CandidateInput struct {
	Name         string `json:"name" validate:"required"`
	Constituency string `json:"constituency" validate:"required"`
}

// ApplicationInput is a user's request to stand in an upcoming election.
type ApplicationInput struct {
	Name             string `json:"name" validate:"required"`
	PartyAffiliation string `json:"party_affiliation"`
	Background       string `json:"background"`
	Manifesto        string `json:"manifesto" validate:"max=5000"`
	Photo            string `json:"photo" validate:"omitempty,url"`
}

// CandidateListing is the public projection used by the candidate list.
type CandidateListing struct {
	ID           primitive.ObjectID      `json:"id"`
	Name         string                  `json:"name"`
	Constituency *models.ConstituencyRef `json:"constituency"`
}

type CandidateService struct {
	d Deps
}

func (s *CandidateService) Create(ctx context.Context, in CandidateInput) (*models.Candidate, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	constituency, err := parseID(in.Constituency)
	if err != nil {
		return nil, err
	}
	if _, err := s.d.Constituencies.FindByID(ctx, constituency); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConstituencyNotFound
		}
		return nil, fmt.Errorf("lookup constituency: %w", err)
	}

	now := s.d.Now()
	c := &models.Candidate{
		ID:           primitive.NewObjectID(),
		Name:         in.Name,
		Constituency: constituency,
		Elections:    []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.d.Candidates.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	return c, nil
}

// List returns candidates sorted by name. An empty constituency means all of them.
func (s *CandidateService) List(ctx context.Context, constituency string) ([]CandidateListing, error) {
	var filter *primitive.ObjectID
	if constituency != "" {
		id, err := parseID(constituency)
		if err != nil {
			return nil, err
		}
		filter = &id
	}

	candidates, err := s.d.Candidates.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Constituency)
	}
	refs, err := constituencyRefs(ctx, s.d.Constituencies, ids)
	if err != nil {
		return nil, fmt.Errorf("populate constituencies: %w", err)
	}

	out := make([]CandidateListing, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, CandidateListing{ID: c.ID, Name: c.Name, Constituency: refs[c.Constituency]})
	}
	return out, nil
}

// Apply files a candidacy for the acting user. Only upcoming elections accept
// applications and each user may apply once per election.
func (s *CandidateService) Apply(ctx context.Context, userID, electionID string, in ApplicationInput) (*models.Candidate, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	eid, err := parseID(electionID)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	election, err := s.d.Elections.FindByID(ctx, eid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrElectionNotFound
		}
		return nil, fmt.Errorf("lookup election: %w", err)
	}
	if election.Status != models.StatusUpcoming {
		return nil, ErrApplicationsClosed
	}

	if _, err := s.d.Candidates.FindApplication(ctx, eid, uid); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup application: %w", err)
	}

	now := s.d.Now()
	c := &models.Candidate{
		ID:               primitive.NewObjectID(),
		Name:             in.Name,
		Constituency:     election.Constituency,
		Elections:        []primitive.ObjectID{eid},
		PartyAffiliation: in.PartyAffiliation,
		Background:       in.Background,
		Manifesto:        in.Manifesto,
		Photo:            in.Photo,
		AppliedBy:        &uid,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.d.Candidates.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	if err := s.d.Elections.AddCandidate(ctx, eid, c.ID); err != nil {
		// Drop the unattached candidate so the user can apply again.
		if derr := s.d.Candidates.Delete(context.WithoutCancel(ctx), c.ID); derr != nil {
			slog.Error("failed to remove unattached candidate", "candidate_id", c.ID.Hex(), "error", derr)
		}
		return nil, fmt.Errorf("attach candidate: %w", err)
	}

	slog.Info("candidacy filed", "election_id", eid.Hex(), "candidate_id", c.ID.Hex())
	return c, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VotingService struct {
	d Deps
}

// CastVote records the user's vote for a candidate in an active election.
//
// The history entry is written first with a filter that only matches when the
// user has not voted in this election, which makes the duplicate check and the
// write one atomic step. The two counter increments follow; if either fails the
// writes already applied are undone before the error is returned.
func (s *VotingService) CastVote(ctx context.Context, userID, electionID, candidateID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	eid, err := parseID(electionID)
	if err != nil {
		return err
	}
	if candidateID == "" {
		return invalid("candidate_id is required")
	}
	cid, err := parseID(candidateID)
	if err != nil {
		return err
	}

	election, err := s.d.Elections.FindByID(ctx, eid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrElectionNotFound
		}
		return fmt.Errorf("lookup election: %w", err)
	}
	if election.Status != models.StatusActive {
		return ErrElectionNotActive
	}
	if !election.HasCandidate(cid) {
		return ErrCandidateNotInRace
	}

	user, err := s.d.Users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if user.HasVotedIn(eid) {
		return ErrAlreadyVoted
	}

	if err := s.d.Users.AppendVote(ctx, uid, eid, s.d.Now()); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrAlreadyVoted
		}
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("record vote: %w", err)
	}

	if err := s.d.Candidates.IncrementVotes(ctx, cid, 1); err != nil {
		s.undo(ctx, uid, eid, primitive.NilObjectID)
		return fmt.Errorf("count candidate vote: %w", err)
	}

	if err := s.d.Elections.IncrementVotes(ctx, eid, 1); err != nil {
		s.undo(ctx, uid, eid, cid)
		return fmt.Errorf("count election vote: %w", err)
	}

	slog.Info("vote recorded", "election_id", eid.Hex(), "user_id", uid.Hex())
	return nil
}

// undo reverts a partially applied vote. A zero candidate id means the
// candidate counter was never incremented.
func (s *VotingService) undo(ctx context.Context, uid, eid, cid primitive.ObjectID) {
	ctx = context.WithoutCancel(ctx)

	if !cid.IsZero() {
		if err := s.d.Candidates.IncrementVotes(ctx, cid, -1); err != nil {
			slog.Error("failed to revert candidate vote; tally is inconsistent",
				"election_id", eid.Hex(), "candidate_id", cid.Hex(), "error", err)
		}
	}
	if err := s.d.Users.RemoveVote(ctx, uid, eid); err != nil {
		slog.Error("failed to revert voting history entry",
			"election_id", eid.Hex(), "user_id", uid.Hex(), "error", err)
	}
}

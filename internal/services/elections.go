package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const UpcomingLimit = 5

type ElectionInput struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Constituency string   `json:"constituency" validate:"required"`
	StartDate    string   `json:"start_date" validate:"required"`
	EndDate      string   `json:"end_date" validate:"required"`
	Candidates   []string `json:"candidates"`
}

// ElectionView is an election with its constituency populated.
type ElectionView struct {
	models.Election
	Constituency *models.ConstituencyRef `json:"constituency"`
}

// ElectionDetail additionally carries the full candidate records.
type ElectionDetail struct {
	models.Election
	Constituency *models.ConstituencyRef `json:"constituency"`
	Candidates   []models.Candidate      `json:"candidates"`
}

// TallyAudit compares the counters of an election with the voting histories.
type TallyAudit struct {
	ElectionID     primitive.ObjectID `json:"election_id"`
	Title          string             `json:"title"`
	TotalVotes     int64              `json:"total_votes"`
	// CandidateVotes sums the candidates' counters, which are not kept per
	// election. A candidate standing in several elections with votes in
	// more than one of them makes each of those audits inconsistent.
	CandidateVotes int64              `json:"candidate_votes"`
	HistoryEntries int64              `json:"history_entries"`
	Consistent     bool               `json:"consistent"`
}

type ElectionService struct {
	d Deps
}

// Create stores a new election. Its status is derived from the date range at
// creation time.
func (s *ElectionService) Create(ctx context.Context, in ElectionInput) (*models.Election, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	start, ok := parseDate(in.StartDate)
	if !ok {
		return nil, invalid("Invalid start date")
	}
	end, ok := parseDate(in.EndDate)
	if !ok {
		return nil, invalid("Invalid end date")
	}
	if !end.After(start) {
		return nil, ErrEndBeforeStart
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

	candidates := make([]primitive.ObjectID, 0, len(in.Candidates))
	for _, raw := range in.Candidates {
		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, id)
	}
	candidates = uniqueIDs(candidates)
	if len(candidates) > 0 {
		found, err := s.d.Candidates.FindByIDs(ctx, candidates)
		if err != nil {
			return nil, fmt.Errorf("lookup candidates: %w", err)
		}
		if len(found) != len(candidates) {
			return nil, ErrCandidateNotFound
		}
	}

	now := s.d.Now()
	e := &models.Election{
		ID:           primitive.NewObjectID(),
		Title:        in.Title,
		Description:  in.Description,
		Constituency: constituency,
		StartDate:    start,
		EndDate:      end,
		Candidates:   candidates,
		Status:       models.StatusAt(start, end, now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.d.Elections.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create election: %w", err)
	}

	// Back-references are best effort; the election itself is already stored.
	err = utils.RunParallel(ctx,
		func(ctx context.Context) error { return s.d.Constituencies.AddElection(ctx, constituency, e.ID) },
		func(ctx context.Context) error { return s.d.Candidates.AddElection(ctx, candidates, e.ID) },
	)
	if err != nil {
		slog.Warn("failed to link election references", "election_id", e.ID.Hex(), "error", err)
	}

	slog.Info("election created", "election_id", e.ID.Hex(), "status", e.Status)
	return e, nil
}

// List returns every election, latest start first, with constituencies populated.
func (s *ElectionService) List(ctx context.Context) ([]ElectionView, error) {
	elections, err := s.d.Elections.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(elections))
	for _, e := range elections {
		ids = append(ids, e.Constituency)
	}
	refs, err := constituencyRefs(ctx, s.d.Constituencies, ids)
	if err != nil {
		return nil, fmt.Errorf("populate constituencies: %w", err)
	}

	out := make([]ElectionView, 0, len(elections))
	for _, e := range elections {
		out = append(out, ElectionView{Election: e, Constituency: refs[e.Constituency]})
	}
	return out, nil
}

// Get returns one election with its constituency and candidates.
func (s *ElectionService) Get(ctx context.Context, electionID string) (*ElectionDetail, error) {
	election, err := s.find(ctx, electionID)
	if err != nil {
		return nil, err
	}

	detail := &ElectionDetail{Election: *election, Candidates: []models.Candidate{}}
	err = utils.RunParallel(ctx,
		func(ctx context.Context) error {
			c, err := s.d.Constituencies.FindByID(ctx, election.Constituency)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			detail.Constituency = c.Ref()
			return nil
		},
		func(ctx context.Context) error {
			if len(election.Candidates) == 0 {
				return nil
			}
			c, err := s.d.Candidates.FindByIDs(ctx, election.Candidates)
			if err != nil {
				return err
			}
			detail.Candidates = c
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("populate election: %w", err)
	}
	return detail, nil
}

func (s *ElectionService) find(ctx context.Context, electionID string) (*models.Election, error) {
	id, err := parseID(electionID)
	if err != nil {
		return nil, err
	}
	election, err := s.d.Elections.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrElectionNotFound
		}
		return nil, fmt.Errorf("lookup election: %w", err)
	}
	return election, nil
}

// Upcoming returns the next elections that have not finished yet.
func (s *ElectionService) Upcoming(ctx context.Context) ([]models.Election, error) {
	return s.d.Elections.Upcoming(ctx, s.d.Now(), UpcomingLimit)
}

// HasVoted reports whether the user's history references the election.
func (s *ElectionService) HasVoted(ctx context.Context, userID, electionID string) (bool, error) {
	uid, err := parseID(userID)
	if err != nil {
		return false, err
	}
	eid, err := parseID(electionID)
	if err != nil {
		return false, err
	}
	return s.d.Users.HasVoted(ctx, uid, eid)
}

// SyncStatuses brings every stored status in line with the current time.
func (s *ElectionService) SyncStatuses(ctx context.Context) (int64, error) {
	return s.d.Elections.SyncStatuses(ctx, s.d.Now())
}

// RunStatusSync calls SyncStatuses at once and then every interval until
// ctx is done.
func (s *ElectionService) RunStatusSync(ctx context.Context, interval time.Duration) {
	s.syncOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *ElectionService) syncOnce(ctx context.Context) {
	n, err := s.SyncStatuses(ctx)
	if err != nil {
		slog.Error("election status sync failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("election statuses updated", "count", n)
	}
}

// Audit reports whether the stored counters agree with the voting histories.
func (s *ElectionService) Audit(ctx context.Context, electionID string) (*TallyAudit, error) {
	election, err := s.find(ctx, electionID)
	if err != nil {
		return nil, err
	}
	return s.audit(ctx, election)
}

func (s *ElectionService) audit(ctx context.Context, election *models.Election) (*TallyAudit, error) {
	a := &TallyAudit{ElectionID: election.ID, Title: election.Title, TotalVotes: election.TotalVotes}

	err := utils.RunParallel(ctx,
		func(ctx context.Context) error {
			n, err := s.d.Users.CountVoters(ctx, election.ID)
			a.HistoryEntries = n
			return err
		},
		func(ctx context.Context) error {
			if len(election.Candidates) == 0 {
				return nil
			}
			candidates, err := s.d.Candidates.FindByIDs(ctx, election.Candidates)
			if err != nil {
				return err
			}
			for _, c := range candidates {
				a.CandidateVotes += c.Votes
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("audit election %s: %w", election.ID.Hex(), err)
	}

	a.Consistent = a.TotalVotes == a.HistoryEntries && a.CandidateVotes == a.HistoryEntries
	return a, nil
}

// AuditAll audits every election, a few at a time.
func (s *ElectionService) AuditAll(ctx context.Context) ([]TallyAudit, error) {
	elections, err := s.d.Elections.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TallyAudit, len(elections))
	err = utils.ForEach(ctx, 4, indexes(len(elections)), func(ctx context.Context, i int) error {
		a, err := s.audit(ctx, &elections[i])
		if err != nil {
			return err
		}
		out[i] = *a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ProofURLExpiry = 10 * time.Minute

type ProfileInput struct {
	FullName string `json:"full_name" validate:"required"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	ZipCode  string `json:"zip_code" validate:"required"`
}

type ElectionSummary struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
}

// HistoryEntry is a voting-history record with its election resolved.
// Election is nil when the election no longer exists.
type HistoryEntry struct {
	Election *ElectionSummary `json:"election"`
	VotedAt  time.Time        `json:"voted_at"`
}

type UserService struct {
	d Deps
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *UserService) find(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.d.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.d.Users.UpdateProfile(ctx, id, models.ProfileUpdate{
		FullName: in.FullName,
		Address: models.Address{
			Street:  in.Street,
			City:    in.City,
			State:   in.State,
			ZipCode: in.ZipCode,
		},
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// VotingHistory returns the user's history in the order the votes were cast.
func (s *UserService) VotingHistory(ctx context.Context, userID string) ([]HistoryEntry, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(user.VotingHistory))
	if len(user.VotingHistory) == 0 {
		return entries, nil
	}

	ids := make([]primitive.ObjectID, 0, len(user.VotingHistory))
	for _, v := range user.VotingHistory {
		ids = append(ids, v.Election)
	}
	elections, err := s.d.Elections.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load elections: %w", err)
	}
	byID := make(map[primitive.ObjectID]*ElectionSummary, len(elections))
	for _, e := range elections {
		byID[e.ID] = &ElectionSummary{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
		}
	}

	for _, v := range user.VotingHistory {
		entries = append(entries, HistoryEntry{Election: byID[v.Election], VotedAt: v.VotedAt})
	}
	return entries, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.d.Users.List(ctx)
}

func (s *UserService) SetVerified(ctx context.Context, userID string, verified bool) (*models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.d.Users.SetVerified(ctx, id, verified)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("set verified: %w", err)
	}
	return user, nil
}

// ProofURL returns a short-lived download link for the user's uploaded ID proof.
func (s *UserService) ProofURL(ctx context.Context, userID string) (string, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.IDProofObject == "" || s.d.Proofs == nil {
		return "", ErrProofNotFound
	}
	return s.d.Proofs.PresignedURL(ctx, user.IDProofObject, ProofURLExpiry)
}

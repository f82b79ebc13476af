package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConstituencyInput struct {
	Name   string `json:"name" validate:"required"`
	Region string `json:"region" validate:"required"`
}

type ConstituencyService struct {
	d Deps
}

func (s *ConstituencyService) Create(ctx context.Context, in ConstituencyInput) (*models.Constituency, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Region = strings.TrimSpace(in.Region)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if _, err := s.d.Constituencies.FindByName(ctx, in.Name); err == nil {
		return nil, ErrConstituencyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup constituency: %w", err)
	}

	now := s.d.Now()
	c := &models.Constituency{
		ID:              primitive.NewObjectID(),
		Name:            in.Name,
		Region:          in.Region,
		ActiveElections: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.d.Constituencies.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrConstituencyExists
		}
		return nil, fmt.Errorf("create constituency: %w", err)
	}
	return c, nil
}

// List returns name and region of every constituency, sorted by name.
func (s *ConstituencyService) List(ctx context.Context) ([]models.ConstituencyRef, error) {
	all, err := s.d.Constituencies.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ConstituencyRef, 0, len(all))
	for i := range all {
		out = append(out, *all[i].Ref())
	}
	return out, nil
}

// constituencyRefs resolves constituency ids to their populated form.
func constituencyRefs(ctx context.Context, cs ConstituencyStore, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.ConstituencyRef, error) {
	out := make(map[primitive.ObjectID]*models.ConstituencyRef)
	if len(ids) == 0 {
		return out, nil
	}
	found, err := cs.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for i := range found {
		out[found[i].ID] = found[i].Ref()
	}
	return out, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

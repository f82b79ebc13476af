package store

import (
	"context"
	"fmt"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/db"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ElectionStore struct {
	coll *mongo.Collection
}

func NewElectionStore(database *mongo.Database) *ElectionStore {
	return &ElectionStore{coll: database.Collection(db.ElectionsCollection)}
}

func (s *ElectionStore) Create(ctx context.Context, e *models.Election) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Candidates == nil {
		e.Candidates = []primitive.ObjectID{}
	}
	_, err := s.coll.InsertOne(ctx, e)
	return translate(err)
}

func (s *ElectionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Election, error) {
	var e models.Election
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *ElectionStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Election, error) {
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// List returns all elections, most recent start first.
func (s *ElectionStore) List(ctx context.Context) ([]models.Election, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}}))
}

// Upcoming returns elections that are not over yet, soonest first.
func (s *ElectionStore) Upcoming(ctx context.Context, now time.Time, limit int64) ([]models.Election, error) {
	filter := bson.M{
		"status":   bson.M{"$in": []string{models.StatusUpcoming, models.StatusActive}},
		"end_date": bson.M{"$gte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}).SetLimit(limit)
	return s.find(ctx, filter, opts)
}

func (s *ElectionStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Election, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve elections: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Election{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding elections: %w", err)
	}
	return out, nil
}

func (s *ElectionStore) AddCandidate(ctx context.Context, id, candidateID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$addToSet": bson.M{"candidates": candidateID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ElectionStore) IncrementVotes(ctx context.Context, id primitive.ObjectID, delta int64) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"total_votes": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SyncStatuses rewrites the status of every election whose stored status no
// longer matches its date range at now. It returns the number of elections changed.
func (s *ElectionStore) SyncStatuses(ctx context.Context, now time.Time) (int64, error) {
	updates := []struct {
		filter bson.M
		status string
	}{
		{bson.M{"start_date": bson.M{"$gt": now}, "status": bson.M{"$ne": models.StatusUpcoming}}, models.StatusUpcoming},
		{bson.M{"start_date": bson.M{"$lte": now}, "end_date": bson.M{"$gte": now}, "status": bson.M{"$ne": models.StatusActive}}, models.StatusActive},
		{bson.M{"end_date": bson.M{"$lt": now}, "status": bson.M{"$ne": models.StatusCompleted}}, models.StatusCompleted},
	}

	counts := make([]int64, len(updates))
	tasks := make([]utils.Task, len(updates))
	for i, u := range updates {
		tasks[i] = func(ctx context.Context) error {
			res, err := s.coll.UpdateMany(ctx, u.filter, bson.M{"$set": bson.M{"status": u.status, "updated_at": now}})
			if err != nil {
				return fmt.Errorf("mark %s: %w", u.status, err)
			}
			counts[i] = res.ModifiedCount
			return nil
		}
	}
	if err := utils.RunParallel(ctx, tasks...); err != nil {
		return 0, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}

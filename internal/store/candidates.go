package store

import (
	"context"
	"fmt"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/db"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CandidateStore struct {
	coll *mongo.Collection
}

func NewCandidateStore(database *mongo.Database) *CandidateStore {
	return &CandidateStore{coll: database.Collection(db.CandidatesCollection)}
}

func (s *CandidateStore) Create(ctx context.Context, c *models.Candidate) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Elections == nil {
		c.Elections = []primitive.ObjectID{}
	}
	_, err := s.coll.InsertOne(ctx, c)
	return translate(err)
}

func (s *CandidateStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Candidate, error) {
	var c models.Candidate
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *CandidateStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Candidate, error) {
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// List returns candidates sorted by name, optionally narrowed to one constituency.
func (s *CandidateStore) List(ctx context.Context, constituency *primitive.ObjectID) ([]models.Candidate, error) {
	filter := bson.M{}
	if constituency != nil {
		filter["constituency"] = *constituency
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// FindApplication looks up the candidacy a user filed for an election.
func (s *CandidateStore) FindApplication(ctx context.Context, electionID, userID primitive.ObjectID) (*models.Candidate, error) {
	var c models.Candidate
	err := s.coll.FindOne(ctx, bson.M{"elections": electionID, "applied_by": userID}).Decode(&c)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *CandidateStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Candidate, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve candidates: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Candidate{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding candidates: %w", err)
	}
	return out, nil
}

// Delete removes a candidate. A missing candidate is not an error.
func (s *CandidateStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AddElection links every listed candidate to the election.
func (s *CandidateStore) AddElection(ctx context.Context, ids []primitive.ObjectID, electionID primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{
			"$addToSet": bson.M{"elections": electionID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

func (s *CandidateStore) IncrementVotes(ctx context.Context, id primitive.ObjectID, delta int64) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"votes": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

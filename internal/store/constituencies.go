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

type ConstituencyStore struct {
	coll *mongo.Collection
}

func NewConstituencyStore(database *mongo.Database) *ConstituencyStore {
	return &ConstituencyStore{coll: database.Collection(db.ConstituenciesCollection)}
}

func (s *ConstituencyStore) Create(ctx context.Context, c *models.Constituency) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.ActiveElections == nil {
		c.ActiveElections = []primitive.ObjectID{}
	}
	_, err := s.coll.InsertOne(ctx, c)
	return translate(err)
}

func (s *ConstituencyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error) {
	var c models.Constituency
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *ConstituencyStore) FindByName(ctx context.Context, name string) (*models.Constituency, error) {
	var c models.Constituency
	if err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindByIDs returns the constituencies among ids that exist, in no particular order.
func (s *ConstituencyStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Constituency, error) {
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// List returns all constituencies sorted by name.
func (s *ConstituencyStore) List(ctx context.Context) ([]models.Constituency, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (s *ConstituencyStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Constituency, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve constituencies: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Constituency{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding constituencies: %w", err)
	}
	return out, nil
}

func (s *ConstituencyStore) AddElection(ctx context.Context, id, electionID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$addToSet": bson.M{"active_elections": electionID},
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

func (s *ConstituencyStore) IncrementVoters(ctx context.Context, id primitive.ObjectID, delta int64) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"total_voters": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

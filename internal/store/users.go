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

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(database *mongo.Database) *UserStore {
	return &UserStore{coll: database.Collection(db.UsersCollection)}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.VotingHistory == nil {
		user.VotingHistory = []models.VoteRecord{}
	}
	_, err := s.coll.InsertOne(ctx, user)
	return translate(err)
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// List returns every user sorted by creation time, without password hashes.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{"password": 0})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("error decoding users: %w", err)
	}
	return users, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	return s.findAndSet(ctx, id, bson.M{
		"full_name":  update.FullName,
		"address":    update.Address,
		"updated_at": time.Now(),
	})
}

func (s *UserStore) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.User, error) {
	return s.findAndSet(ctx, id, bson.M{"is_verified": verified, "updated_at": time.Now()})
}

// SetRole is used by the admin bootstrap to promote an existing account.
func (s *UserStore) SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	return s.findAndSet(ctx, id, bson.M{"role": role, "updated_at": time.Now()})
}

func (s *UserStore) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// AppendVote pushes a history entry unless one for the election already
// exists. The filter and the push happen in a single document update, so two
// concurrent requests cannot both succeed. ErrDuplicate means the guard held.
func (s *UserStore) AppendVote(ctx context.Context, userID, electionID primitive.ObjectID, at time.Time) error {
	filter := bson.M{
		"_id":                     userID,
		"voting_history.election": bson.M{"$ne": electionID},
	}
	update := bson.M{"$push": bson.M{"voting_history": models.VoteRecord{Election: electionID, VotedAt: at}}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the vote is already recorded or the user is gone.
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": userID})
		if err != nil {
			return fmt.Errorf("failed to check voter: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrDuplicate
	}
	return nil
}

// RemoveVote undoes AppendVote.
func (s *UserStore) RemoveVote(ctx context.Context, userID, electionID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"voting_history": bson.M{"election": electionID}}},
	)
	return err
}

func (s *UserStore) HasVoted(ctx context.Context, userID, electionID primitive.ObjectID) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": userID, "voting_history.election": electionID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountVoters counts the users whose history references the election.
func (s *UserStore) CountVoters(ctx context.Context, electionID primitive.ObjectID) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"voting_history.election": electionID})
}

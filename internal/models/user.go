package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zip_code" json:"zip_code"`
}

// VoteRecord is one entry of a user's voting history.
type VoteRecord struct {
	Election primitive.ObjectID `bson:"election" json:"election"`
	VotedAt  time.Time          `bson:"voted_at" json:"voted_at"`
}

type User struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Email         string              `bson:"email" json:"email"`
	Password      string              `bson:"password,omitempty" json:"-"`
	FullName      string              `bson:"full_name" json:"full_name"`
	DateOfBirth   time.Time           `bson:"date_of_birth" json:"date_of_birth"`
	Address       Address             `bson:"address" json:"address"`
	IDProof       string              `bson:"id_proof" json:"id_proof"`
	IDProofObject string              `bson:"id_proof_object,omitempty" json:"-"`
	IsVerified    bool                `bson:"is_verified" json:"is_verified"`
	Role          string              `bson:"role" json:"role"`
	Constituency  *primitive.ObjectID `bson:"constituency,omitempty" json:"constituency,omitempty"`
	VotingHistory []VoteRecord        `bson:"voting_history" json:"voting_history"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

// HasVotedIn reports whether the voting history already references the election.
func (u *User) HasVotedIn(electionID primitive.ObjectID) bool {
	for _, v := range u.VotingHistory {
		if v.Election == electionID {
			return true
		}
	}
	return false
}

// ProfileUpdate carries the fields a user may change on their own profile.
type ProfileUpdate struct {
	FullName string
	Address  Address
}

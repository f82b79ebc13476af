package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Candidate struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name             string               `bson:"name" json:"name"`
	Constituency     primitive.ObjectID   `bson:"constituency" json:"constituency"`
	Elections        []primitive.ObjectID `bson:"elections" json:"elections"`
	Votes            int64                `bson:"votes" json:"votes"`
	PartyAffiliation string               `bson:"party_affiliation,omitempty" json:"party_affiliation,omitempty"`
	Background       string               `bson:"background,omitempty" json:"background,omitempty"`
	Manifesto        string               `bson:"manifesto,omitempty" json:"manifesto,omitempty"`
	Photo            string               `bson:"photo,omitempty" json:"photo,omitempty"`
	AppliedBy        *primitive.ObjectID  `bson:"applied_by,omitempty" json:"applied_by,omitempty"`
	CreatedAt        time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updated_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Constituency struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Region          string               `bson:"region" json:"region"`
	TotalVoters     int64                `bson:"total_voters" json:"total_voters"`
	ActiveElections []primitive.ObjectID `bson:"active_elections" json:"active_elections"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updated_at"`
}

// ConstituencyRef is the populated form embedded in election and candidate listings.
type ConstituencyRef struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Region string             `json:"region"`
}

func (c *Constituency) Ref() *ConstituencyRef {
	return &ConstituencyRef{ID: c.ID, Name: c.Name, Region: c.Region}
}

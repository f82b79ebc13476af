package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

type Election struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	Constituency primitive.ObjectID   `bson:"constituency" json:"constituency"`
	StartDate    time.Time            `bson:"start_date" json:"start_date"`
	EndDate      time.Time            `bson:"end_date" json:"end_date"`
	Candidates   []primitive.ObjectID `bson:"candidates" json:"candidates"`
	Status       string               `bson:"status" json:"status"`
	TotalVotes   int64                `bson:"total_votes" json:"total_votes"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

// StatusAt derives the election status from its date range. Both bounds are
// inclusive: an election is active from the start instant through the end instant.
func StatusAt(start, end, now time.Time) string {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusCompleted
	default:
		return StatusActive
	}
}

// HasCandidate reports whether the candidate is standing in the election.
func (e *Election) HasCandidate(candidateID primitive.ObjectID) bool {
	for _, c := range e.Candidates {
		if c == candidateID {
			return true
		}
	}
	return false
}

// Package testutil provides in-memory implementations of the service stores
// and helpers shared by the package tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users is an in-memory user collection.
type Users struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.User

	// FailAppend, when set, is returned by AppendVote.
	FailAppend error
}

func NewUsers() *Users {
	return &Users{docs: make(map[primitive.ObjectID]models.User)}
}

func cloneUser(u models.User) models.User {
	u.VotingHistory = append([]models.VoteRecord(nil), u.VotingHistory...)
	return u
}

func (s *Users) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.docs {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.docs[user.ID] = cloneUser(*user)
	return nil
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.docs {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.docs))
	for _, u := range s.docs {
		u = cloneUser(u)
		u.Password = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Users) update(id primitive.ObjectID, fn func(u *models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	fn(&u)
	s.docs[id] = u
	out := cloneUser(u)
	return &out, nil
}

func (s *Users) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	return s.update(id, func(u *models.User) {
		u.FullName = update.FullName
		u.Address = update.Address
	})
}

func (s *Users) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.User, error) {
	return s.update(id, func(u *models.User) { u.IsVerified = verified })
}

func (s *Users) SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	return s.update(id, func(u *models.User) { u.Role = role })
}

func (s *Users) AppendVote(ctx context.Context, userID, electionID primitive.ObjectID, at time.Time) error {
	if s.FailAppend != nil {
		return s.FailAppend
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[userID]
	if !ok {
		return store.ErrNotFound
	}
	if u.HasVotedIn(electionID) {
		return store.ErrDuplicate
	}
	u.VotingHistory = append(u.VotingHistory, models.VoteRecord{Election: electionID, VotedAt: at})
	s.docs[userID] = u
	return nil
}

func (s *Users) RemoveVote(ctx context.Context, userID, electionID primitive.ObjectID) error {
	_, err := s.update(userID, func(u *models.User) {
		kept := u.VotingHistory[:0]
		for _, v := range u.VotingHistory {
			if v.Election != electionID {
				kept = append(kept, v)
			}
		}
		u.VotingHistory = kept
	})
	if err == store.ErrNotFound {
		return nil
	}
	return err
}

func (s *Users) HasVoted(ctx context.Context, userID, electionID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[userID]
	return ok && u.HasVotedIn(electionID), nil
}

func (s *Users) CountVoters(ctx context.Context, electionID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.docs {
		if u.HasVotedIn(electionID) {
			n++
		}
	}
	return n, nil
}

// Constituencies is an in-memory constituency collection.
type Constituencies struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Constituency
}

func NewConstituencies() *Constituencies {
	return &Constituencies{docs: make(map[primitive.ObjectID]models.Constituency)}
}

func (s *Constituencies) Create(ctx context.Context, c *models.Constituency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.docs {
		if existing.Name == c.Name {
			return store.ErrDuplicate
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.docs[c.ID] = *c
	return nil
}

func (s *Constituencies) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Constituencies) FindByName(ctx context.Context, name string) (*models.Constituency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.docs {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Constituencies) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Constituency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Constituency{}
	for _, id := range ids {
		if c, ok := s.docs[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Constituencies) List(ctx context.Context) ([]models.Constituency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Constituency, 0, len(s.docs))
	for _, c := range s.docs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Constituencies) AddElection(ctx context.Context, id, electionID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	c.ActiveElections = append(c.ActiveElections, electionID)
	s.docs[id] = c
	return nil
}

func (s *Constituencies) IncrementVoters(ctx context.Context, id primitive.ObjectID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	c.TotalVoters += delta
	s.docs[id] = c
	return nil
}

// Candidates is an in-memory candidate collection.
type Candidates struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Candidate

	// FailIncrement, when set, is returned by positive IncrementVotes calls.
	FailIncrement error
}

func NewCandidates() *Candidates {
	return &Candidates{docs: make(map[primitive.ObjectID]models.Candidate)}
}

func (s *Candidates) Create(ctx context.Context, c *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.AppliedBy != nil {
		for _, existing := range s.docs {
			if existing.AppliedBy != nil && *existing.AppliedBy == *c.AppliedBy && sharesElection(existing.Elections, c.Elections) {
				return store.ErrDuplicate
			}
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.docs[c.ID] = *c
	return nil
}

func sharesElection(a, b []primitive.ObjectID) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (s *Candidates) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *Candidates) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Candidates) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Candidate{}
	for _, id := range ids {
		if c, ok := s.docs[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Candidates) List(ctx context.Context, constituency *primitive.ObjectID) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Candidate{}
	for _, c := range s.docs {
		if constituency == nil || c.Constituency == *constituency {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Candidates) FindApplication(ctx context.Context, electionID, userID primitive.ObjectID) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.docs {
		if c.AppliedBy == nil || *c.AppliedBy != userID {
			continue
		}
		for _, e := range c.Elections {
			if e == electionID {
				return &c, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (s *Candidates) AddElection(ctx context.Context, ids []primitive.ObjectID, electionID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if c, ok := s.docs[id]; ok {
			c.Elections = append(c.Elections, electionID)
			s.docs[id] = c
		}
	}
	return nil
}

func (s *Candidates) IncrementVotes(ctx context.Context, id primitive.ObjectID, delta int64) error {
	if delta > 0 && s.FailIncrement != nil {
		return s.FailIncrement
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Votes += delta
	s.docs[id] = c
	return nil
}

// Elections is an in-memory election collection.
type Elections struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Election

	// FailIncrement, when set, is returned by positive IncrementVotes calls.
	FailIncrement error
	// FailAddCandidate, when set, is returned by AddCandidate.
	FailAddCandidate error
}

func NewElections() *Elections {
	return &Elections{docs: make(map[primitive.ObjectID]models.Election)}
}

func cloneElection(e models.Election) models.Election {
	e.Candidates = append([]primitive.ObjectID(nil), e.Candidates...)
	return e
}

func (s *Elections) Create(ctx context.Context, e *models.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	s.docs[e.ID] = cloneElection(*e)
	return nil
}

func (s *Elections) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	e = cloneElection(e)
	return &e, nil
}

func (s *Elections) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Election{}
	for _, id := range ids {
		if e, ok := s.docs[id]; ok {
			out = append(out, cloneElection(e))
		}
	}
	return out, nil
}

func (s *Elections) all() []models.Election {
	out := make([]models.Election, 0, len(s.docs))
	for _, e := range s.docs {
		out = append(out, cloneElection(e))
	}
	return out
}

func (s *Elections) List(ctx context.Context) ([]models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.all()
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (s *Elections) Upcoming(ctx context.Context, now time.Time, limit int64) ([]models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Election{}
	for _, e := range s.all() {
		if (e.Status == models.StatusUpcoming || e.Status == models.StatusActive) && !e.EndDate.Before(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Elections) AddCandidate(ctx context.Context, id, candidateID primitive.ObjectID) error {
	if s.FailAddCandidate != nil {
		return s.FailAddCandidate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Candidates = append(e.Candidates, candidateID)
	s.docs[id] = e
	return nil
}

func (s *Elections) IncrementVotes(ctx context.Context, id primitive.ObjectID, delta int64) error {
	if delta > 0 && s.FailIncrement != nil {
		return s.FailIncrement
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	e.TotalVotes += delta
	s.docs[id] = e
	return nil
}

func (s *Elections) SyncStatuses(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, e := range s.docs {
		status := models.StatusAt(e.StartDate, e.EndDate, now)
		if status != e.Status {
			e.Status = status
			s.docs[id] = e
			n++
		}
	}
	return n, nil
}

// Proofs is an in-memory document store.
type Proofs struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewProofs() *Proofs {
	return &Proofs{Objects: make(map[string][]byte)}
}

func (p *Proofs) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Objects[key] = buf.Bytes()
	return nil
}

func (p *Proofs) Remove(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Objects, key)
	return nil
}

func (p *Proofs) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Objects[key]; !ok {
		return "", fmt.Errorf("no object %s", key)
	}
	return "http://proofs.local/" + key + "?expires=" + expiry.String(), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/auth"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinimumAge   = 18
	MaxProofSize = 5 << 20
)

var allowedProofTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

type RegisterInput struct {
	Email        string `json:"email" form:"email" validate:"required,email"`
	Password     string `json:"password" form:"password" validate:"required,min=8,max=72"`
	FullName     string `json:"full_name" form:"full_name" validate:"required"`
	DateOfBirth  string `json:"date_of_birth" form:"date_of_birth" validate:"required"`
	Street       string `json:"street" form:"street" validate:"required"`
	City         string `json:"city" form:"city" validate:"required"`
	State        string `json:"state" form:"state" validate:"required"`
	ZipCode      string `json:"zip_code" form:"zip_code" validate:"required"`
	IDProof      string `json:"id_proof" form:"id_proof"`
	Constituency string `json:"constituency" form:"constituency"`

	Document *Document `json:"-" form:"-"`
}

// Document is an uploaded identity document.
type Document struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type AuthService struct {
	d Deps
}

// Register creates a voter account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.IDProof) == "" && in.Document == nil {
		return nil, invalid("id_proof is required")
	}

	dob, ok := parseDate(in.DateOfBirth)
	if !ok {
		return nil, invalid("Invalid date of birth")
	}
	now := s.d.Now()
	if !IsAdult(dob, now) {
		return nil, ErrUnderage
	}

	if _, err := s.d.Users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	var constituency *primitive.ObjectID
	if in.Constituency != "" {
		id, err := parseID(in.Constituency)
		if err != nil {
			return nil, err
		}
		if _, err := s.d.Constituencies.FindByID(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrConstituencyNotFound
			}
			return nil, fmt.Errorf("lookup constituency: %w", err)
		}
		constituency = &id
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:          primitive.NewObjectID(),
		Email:       in.Email,
		Password:    hash,
		FullName:    in.FullName,
		DateOfBirth: dob,
		Address: models.Address{
			Street:  in.Street,
			City:    in.City,
			State:   in.State,
			ZipCode: in.ZipCode,
		},
		IDProof:       strings.TrimSpace(in.IDProof),
		Role:          models.RoleVoter,
		Constituency:  constituency,
		VotingHistory: []models.VoteRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if in.Document != nil {
		key, err := s.storeDocument(ctx, user.ID, in.Document)
		if err != nil {
			return nil, err
		}
		user.IDProofObject = key
		if user.IDProof == "" {
			user.IDProof = in.Document.Filename
		}
	}

	if err := s.d.Users.Create(ctx, user); err != nil {
		s.discardDocument(user.IDProofObject)
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if constituency != nil {
		if err := s.d.Constituencies.IncrementVoters(ctx, *constituency, 1); err != nil {
			slog.Warn("failed to update constituency voter count", "constituency", constituency.Hex(), "error", err)
		}
	}

	slog.Info("user registered", "user_id", user.ID.Hex())
	return user, nil
}

func (s *AuthService) storeDocument(ctx context.Context, userID primitive.ObjectID, doc *Document) (string, error) {
	if s.d.Proofs == nil {
		return "", ErrUploadsUnavailable
	}
	if doc.Size > MaxProofSize {
		return "", invalid(fmt.Sprintf("ID proof %s exceeds the %s limit", doc.Filename, humanize.IBytes(MaxProofSize)))
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(doc.ContentType, ";", 2)[0]))
	ext, ok := allowedProofTypes[contentType]
	if !ok {
		return "", ErrUnsupportedDocument
	}
	if e := strings.ToLower(filepath.Ext(doc.Filename)); e != "" {
		ext = e
	}

	key := fmt.Sprintf("users/%s/%s%s", userID.Hex(), uuid.NewString(), ext)
	if err := s.d.Proofs.Put(ctx, key, doc.Body, doc.Size, contentType); err != nil {
		return "", fmt.Errorf("store id proof: %w", err)
	}
	return key, nil
}

func (s *AuthService) discardDocument(key string) {
	if key == "" || s.d.Proofs == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.d.Proofs.Remove(ctx, key); err != nil {
			slog.Warn("failed to remove orphaned id proof", "key", key, "error", err)
		}
	}()
}

// Login authenticates a user and returns a session token with role info.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.d.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.d.Tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CreateAdmin creates an admin account, or promotes the existing account with
// that email. It backs the create-admin command.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password, fullName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, invalid("email must be a valid email address")
	}

	existing, err := s.d.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.d.Users.SetRole(ctx, existing.ID, models.RoleAdmin)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if len(password) < 8 {
		return nil, invalid("password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.d.Now()
	user := &models.User{
		ID:            primitive.NewObjectID(),
		Email:         email,
		Password:      hash,
		FullName:      fullName,
		IsVerified:    true,
		Role:          models.RoleAdmin,
		VotingHistory: []models.VoteRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.d.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}

// IsAdult reports whether someone born on dob has had their 18th birthday by now.
func IsAdult(dob, now time.Time) bool {
	return !dob.AddDate(MinimumAge, 0, 0).After(now)
}

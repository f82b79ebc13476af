package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Kind int

const (
	KindInvalid Kind = iota + 1
	KindUnauthorized
	KindNotFound
)

// Error is a failure the caller can act on. Anything that is not an *Error
// is an internal failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalid(msg string) *Error      { return &Error{Kind: KindInvalid, Message: msg} }
func unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func notFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }

var (
	ErrInvalidID          = invalid("Invalid id")
	ErrInvalidCredentials = unauthorized("Invalid credentials")

	ErrUserNotFound         = notFound("User not found")
	ErrElectionNotFound     = notFound("Election not found")
	ErrConstituencyNotFound = invalid("Constituency not found")
	ErrCandidateNotFound    = invalid("Candidate not found")
	ErrProofNotFound        = notFound("No ID proof document on file")

	ErrUserExists         = invalid("User already exists")
	ErrConstituencyExists = invalid("Constituency already exists")
	ErrUnderage           = invalid("You must be at least 18 years old to register")
	ErrEndBeforeStart     = invalid("End date must be after start date")

	ErrElectionNotActive   = invalid("Election is not active")
	ErrCandidateNotInRace  = invalid("Candidate is not standing in this election")
	ErrAlreadyVoted        = invalid("You have already voted in this election")
	ErrApplicationsClosed  = invalid("Applications are only accepted for upcoming elections")
	ErrAlreadyApplied      = invalid("You have already applied for this election")
	ErrUploadsUnavailable  = invalid("ID proof uploads are not available")
	ErrUnsupportedDocument = invalid("ID proof must be a JPEG, PNG or PDF document")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs the struct tags and turns the first violation into a 400.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return invalid("Invalid request body")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return invalid(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return invalid(fmt.Sprintf("%s must be a valid email address", fe.Field()))
	case "min":
		return invalid(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "max":
		return invalid(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return invalid(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate accepts RFC 3339 timestamps, HTML datetime-local values and plain dates (UTC).
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

package inquiry

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"venue/internal/domain/shared/events"
)

var (
	ErrMissingFields = errors.New("inquiry: name, email and message are required")
	ErrInvalidEmail  = errors.New("inquiry: invalid email address")
	ErrNotFound      = errors.New("inquiry: not found")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type InquiryID string

// Inquiry is a message left through the contact form.
type Inquiry struct {
	ID        InquiryID
	Name      string
	Email     string
	Phone     string
	Message   string
	Locale    string
	CreatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id InquiryID) (*Inquiry, error)
	Save(ctx context.Context, inquiry *Inquiry) error
}

type SubmitParams struct {
	ID        InquiryID
	Name      string
	Email     string
	Phone     string
	Message   string
	Locale    string
	CreatedAt time.Time
}

func Submit(params SubmitParams) (*Inquiry, error) {
	name := strings.TrimSpace(params.Name)
	email := strings.TrimSpace(params.Email)
	message := strings.TrimSpace(params.Message)
	if name == "" || email == "" || message == "" {
		return nil, ErrMissingFields
	}
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	in := &Inquiry{
		ID:        params.ID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(params.Phone),
		Message:   message,
		Locale:    params.Locale,
		CreatedAt: params.CreatedAt.UTC(),
	}
	in.Record(InquiryReceived{
		InquiryID: in.ID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Locale:    in.Locale,
		At:        in.CreatedAt,
	})
	return in, nil
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Package contact handles contact form submissions.
package contact

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/jon4hz/cinetro/internal/database"
)

// Submission is the payload of the contact form.
type Submission struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=254"`
	Message string `json:"message" form:"message" validate:"required"`
}

// ValidationError lists the problems of a submission per field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, " ")))
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// DeliveryError is returned when a stored message could not be mailed.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Store persists contact messages.
type Store interface {
	CreateContactMessage(ctx context.Context, msg *database.ContactMessage) error
}

// Notifier sends the emails of a submission.
type Notifier interface {
	Enabled() bool
	SendContactAlert(msg database.ContactMessage) error
	SendContactAcknowledgement(msg database.ContactMessage) error
}

// Service validates, stores and mails contact form submissions.
type Service struct {
	store    Store
	notifier Notifier
	validate *validator.Validate
}

// New creates a new contact service.
func New(store Store, notifier Notifier) *Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{
		store:    store,
		notifier: notifier,
		validate: validate,
	}
}

// Submit stores the submission, then alerts the operator and acknowledges the sender.
// Invalid input yields a *ValidationError and nothing is stored.
// A mail failure yields a *DeliveryError; the stored message is kept.
func (s *Service) Submit(ctx context.Context, sub Submission) (*database.ContactMessage, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Message = strings.TrimSpace(sub.Message)

	if err := s.validateSubmission(sub); err != nil {
		return nil, err
	}

	msg := &database.ContactMessage{
		Name:    sub.Name,
		Email:   sub.Email,
		Message: sub.Message,
	}
	if err := s.store.CreateContactMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}
	log.Info("Contact message received", "id", msg.ID, "email", msg.Email)

	if !s.notifier.Enabled() {
		log.Warn("Email is disabled, contact message was stored but not mailed", "id", msg.ID)
		return msg, nil
	}

	if err := s.notifier.SendContactAlert(*msg); err != nil {
		log.Error("Failed to send contact alert", "id", msg.ID, "error", err)
		return msg, &DeliveryError{Err: err}
	}
	if err := s.notifier.SendContactAcknowledgement(*msg); err != nil {
		log.Error("Failed to send contact acknowledgement", "id", msg.ID, "error", err)
		return msg, &DeliveryError{Err: err}
	}

	return msg, nil
}

func (s *Service) validateSubmission(sub Submission) error {
	err := s.validate.Struct(sub)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string][]string)
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], message(fe))
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

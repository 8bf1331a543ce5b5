package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"
	"github.com/psychmag/psychmag/internal/util"

	"github.com/google/uuid"
)

// ContactService stores messages from the public contact form.
type ContactService struct {
	store     *store.Store
	maxLength int
	rec       mutationRecorder
}

func NewContactService(
	s *store.Store,
	maxLength int,
	auditor Auditor,
	metrics core.Recorder,
) *ContactService {
	if maxLength <= 0 {
		maxLength = 5000
	}
	return &ContactService{
		store:     s,
		maxLength: maxLength,
		rec:       mutationRecorder{auditor: auditor, metrics: metrics},
	}
}

// Submit validates and stores a message.
func (s *ContactService) Submit(ctx context.Context, email, message string) (*models.ContactMessage, error) {
	email = models.NormalizeEmail(email)
	message = strings.TrimSpace(message)

	if !util.IsValidEmail(email) {
		s.recordMetric(false)
		return nil, ErrInvalidEmail
	}
	if message == "" {
		s.recordMetric(false)
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(message) > s.maxLength {
		s.recordMetric(false)
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, s.maxLength)
	}

	msg := &models.ContactMessage{
		ID:      uuid.New().String(),
		Email:   email,
		Message: message,
	}
	err := s.store.CreateContactMessage(ctx, msg)
	s.recordMetric(err == nil)
	if err != nil {
		return nil, err
	}

	s.rec.recordEvent(ctx, AuditLogEntry{
		EventType:    models.EventContactMessageNew,
		Severity:     models.SeverityInfo,
		ActorEmail:   email,
		ResourceType: models.ResourceContactMessage,
		ResourceID:   msg.ID,
		Action:       "Contact message received",
		Success:      true,
	})
	return msg, nil
}

func (s *ContactService) List(
	ctx context.Context,
	params store.PaginationParams,
) ([]models.ContactMessage, store.PaginationResult, error) {
	return s.store.ListContactMessages(ctx, params)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	err := mapStoreError(s.store.DeleteContactMessage(ctx, id))
	s.rec.record(ctx, models.ResourceContactMessage, actionDelete, id, "", err)
	return err
}

func (s *ContactService) recordMetric(success bool) {
	if s.rec.metrics != nil {
		s.rec.metrics.RecordContactMessage(success)
	}
}

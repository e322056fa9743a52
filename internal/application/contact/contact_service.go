// Package contact implements the storefront contact form.
package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/contact"
	"github.com/troves/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SubmitRequest is the contact form payload
type SubmitRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// ListFilter holds admin list query parameters
type ListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=NEW READ ARCHIVED"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// MessageResponse represents a contact message in API responses
type MessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToMessageResponse converts a domain message
func ToMessageResponse(m *contact.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Body,
		Status:    string(m.Status),
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

// Service handles contact messages
type Service struct {
	repo           contact.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new contact Service
func NewService(repo contact.Repository, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, eventPublisher: publisher, logger: logger}
}

// Submit stores a new message and raises ContactMessageReceived
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*MessageResponse, error) {
	m, err := contact.NewMessage(req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}

	if events := m.GetDomainEvents(); s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish contact events", zap.Error(err))
		}
	}
	m.ClearDomainEvents()

	resp := ToMessageResponse(m)
	return &resp, nil
}

// List returns messages newest first
func (s *Service) List(ctx context.Context, filter ListFilter) ([]MessageResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}

	messages, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]MessageResponse, len(messages))
	for i := range messages {
		out[i] = ToMessageResponse(&messages[i])
	}
	return out, total, nil
}

// MarkRead marks a message read. Marking it twice is a no-op.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*MessageResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == contact.StatusRead {
		resp := ToMessageResponse(m)
		return &resp, nil
	}
	if err := m.MarkRead(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	resp := ToMessageResponse(m)
	return &resp, nil
}

// Archive files a message away. Archiving twice is a no-op.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*MessageResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != contact.StatusArchived {
		m.Archive()
		if err := s.repo.Save(ctx, m); err != nil {
			return nil, err
		}
	}
	resp := ToMessageResponse(m)
	return &resp, nil
}

// ArchiveOld archives READ messages older than age
func (s *Service) ArchiveOld(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Archive age must be positive")
	}
	n, err := s.repo.ArchiveReadBefore(ctx, time.Now().Add(-age))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("old contact messages archived", zap.Int64("archived", n))
	}
	return n, nil
}

package contact

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/shared"
)

// Status tracks how far a message has been handled
type Status string

const (
	StatusNew      Status = "NEW"
	StatusRead     Status = "READ"
	StatusArchived Status = "ARCHIVED"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	return s == StatusNew || s == StatusRead || s == StatusArchived
}

const (
	minMessageLength = 10
	maxMessageLength = 5000
	maxSubjectLength = 200
)

// Message is a note sent through the storefront contact form
type Message struct {
	shared.BaseAggregateRoot
	Name    string
	Email   string
	Subject string
	Body    string
	Status  Status
	ReadAt  *time.Time
}

// NewMessage validates and creates a NEW message
func NewMessage(name, email, subject, body string) (*Message, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)

	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name is required")
	}
	if utf8.RuneCountInString(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email is not a valid address")
	}
	if utf8.RuneCountInString(subject) > maxSubjectLength {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	n := utf8.RuneCountInString(body)
	if n < minMessageLength || n > maxMessageLength {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message must be between 10 and 5000 characters")
	}

	m := &Message{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Subject:           subject,
		Body:              body,
		Status:            StatusNew,
	}
	m.AddDomainEvent(NewMessageReceivedEvent(m))
	return m, nil
}

// MarkRead moves a NEW message to READ. Already-read messages are left alone.
func (m *Message) MarkRead() error {
	switch m.Status {
	case StatusRead:
		return nil
	case StatusArchived:
		return shared.NewDomainError("INVALID_STATE", "Archived messages cannot be marked read")
	}
	now := time.Now()
	m.Status = StatusRead
	m.ReadAt = &now
	m.touch()
	return nil
}

// Archive files the message away; archiving twice is a no-op
func (m *Message) Archive() {
	if m.Status == StatusArchived {
		return
	}
	if m.ReadAt == nil {
		now := time.Now()
		m.ReadAt = &now
	}
	m.Status = StatusArchived
	m.touch()
}

func (m *Message) touch() {
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// AggregateTypeMessage names the contact message aggregate on events
const AggregateTypeMessage = "ContactMessage"

// EventTypeMessageReceived is raised when a visitor submits the form
const EventTypeMessageReceived = "ContactMessageReceived"

// MessageReceivedEvent carries enough to notify the shop owner
type MessageReceivedEvent struct {
	shared.BaseDomainEvent
	MessageID uuid.UUID `json:"message_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
}

func NewMessageReceivedEvent(m *Message) *MessageReceivedEvent {
	return &MessageReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageReceived, AggregateTypeMessage, m.ID),
		MessageID:       m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Subject:         m.Subject,
	}
}

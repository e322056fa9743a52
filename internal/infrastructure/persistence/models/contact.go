package models

import (
	"time"

	"github.com/troves/backend/internal/domain/contact"
)

// ContactMessageModel is the persistence model for contact messages
type ContactMessageModel struct {
	AggregateModel
	Name    string         `gorm:"type:varchar(200);not null"`
	Email   string         `gorm:"type:varchar(254);not null;index"`
	Subject string         `gorm:"type:varchar(200)"`
	Body    string         `gorm:"column:message;type:text;not null"`
	Status  contact.Status `gorm:"type:varchar(20);not null;index"`
	ReadAt  *time.Time
}

// TableName returns the table name for GORM
func (ContactMessageModel) TableName() string {
	return "contact_messages"
}

// ToDomain converts the model to a domain message
func (m *ContactMessageModel) ToDomain() *contact.Message {
	return &contact.Message{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Subject:           m.Subject,
		Body:              m.Body,
		Status:            m.Status,
		ReadAt:            m.ReadAt,
	}
}

// ContactMessageModelFromDomain creates a persistence model from a message
func ContactMessageModelFromDomain(msg *contact.Message) *ContactMessageModel {
	m := &ContactMessageModel{
		Name:    msg.Name,
		Email:   msg.Email,
		Subject: msg.Subject,
		Body:    msg.Body,
		Status:  msg.Status,
		ReadAt:  msg.ReadAt,
	}
	m.FromDomainAggregateRoot(msg.BaseAggregateRoot)
	return m
}

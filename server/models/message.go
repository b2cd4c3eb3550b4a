package models

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ContactMessage is one contact form submission. Rows are only ever inserted.
type ContactMessage struct {
	ID           uint   `json:"id,omitempty" gorm:"primarykey"`
	FullName     string `json:"fullname" gorm:"column:fullname;type:text"`
	EmailAddress string `json:"emailaddress" gorm:"column:emailaddress;type:text"`
	PhoneNumber  string `json:"phonenumber" gorm:"column:phonenumber;type:text"`
	Message      string `json:"message" gorm:"column:message;type:text"`
}

func (ContactMessage) TableName() string {
	return "messages"
}

// SaveMessage inserts msg in its own transaction. The row is committed only if the
// insert succeeds; any error (or panic) rolls it back and releases the connection.
func (s *Store) SaveMessage(ctx context.Context, msg *ContactMessage) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(msg).Error
	})
	if err != nil {
		return errors.Wrap(err, "insert into messages")
	}

	return nil
}

// CountMessages returns the number of stored contact messages.
func (s *Store) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ContactMessage{}).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "count messages")
	}

	return count, nil
}

// FindMessages returns every stored message in insertion order.
func (s *Store) FindMessages(ctx context.Context) ([]ContactMessage, error) {
	messages := []ContactMessage{}
	err := s.db.WithContext(ctx).Order("id").Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "find messages")
	}

	return messages, nil
}

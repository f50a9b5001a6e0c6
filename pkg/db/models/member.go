package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/pkg/types"
)

// Member represents a registered library member.
type Member struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	FirstName    string        `gorm:"column:first_name;not null;index"`
	LastName     string        `gorm:"column:last_name;not null;index"`
	Email        string        `gorm:"column:email;type:text;not null;uniqueIndex"`
	PhoneNumber  string        `gorm:"column:phone_number;type:text;not null;uniqueIndex"`
	PasswordHash string        `gorm:"column:password_hash;not null"`
	Address      types.Address `gorm:"column:address;type:text"`
	IsAdmin      bool          `gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// FullName joins the member's names for display.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

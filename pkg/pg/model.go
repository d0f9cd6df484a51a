package pg

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is the common row header: an opaque string id assigned on insert plus
// bookkeeping timestamps.
type Model struct {
	ID        string    `gorm:"primaryKey;type:varchar(36);column:id"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (m *Model) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

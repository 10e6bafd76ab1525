package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Summary is the rendered literature summary for a topic. At most one row
// exists per topic; a re-run replaces the previous one.
type Summary struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TopicID string `json:"topic_id" gorm:"type:uuid;index;not null"`
	Topic   *Topic `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	Content string `json:"content" gorm:"type:text"`
}

// TableName sets the explicit table name.
func (Summary) TableName() string {
	return "summaries"
}

func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

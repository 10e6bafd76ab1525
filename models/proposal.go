package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proposal is the drafted research proposal for a topic. At most one row
// exists per topic; a re-run replaces the previous one.
type Proposal struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TopicID string `json:"topic_id" gorm:"type:uuid;index;not null"`
	Topic   *Topic `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	Title   string `json:"title" gorm:"not null"`
	Content string `json:"content" gorm:"type:text"`
	// Set when the rendered document was archived to S3.
	ArchiveURL string `json:"archive_url,omitempty"`
}

// TableName sets the explicit table name.
func (Proposal) TableName() string {
	return "proposals"
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic status values, in pipeline order. A topic only ever moves forward
// through these; failed is reachable from any non-terminal status.
const (
	StatusPending   = "pending"
	StatusSearching = "searching"
	StatusAnalyzing = "analyzing"
	StatusRefining  = "refining"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Topic is a user-submitted research query tracked through the pipeline.
type Topic struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID string `json:"owner_id" gorm:"index;not null"`
	Text    string `json:"text" gorm:"type:text;not null"`
	Status  string `json:"status" gorm:"index;default:'pending'"`
}

// TableName sets the explicit table name.
func (Topic) TableName() string {
	return "topics"
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Terminal reports whether the status can no longer advance.
func (t *Topic) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

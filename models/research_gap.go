package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Gap priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ResearchGap is one templated statement describing an under-researched
// area. Every pipeline run writes a fixed set of seven per topic.
type ResearchGap struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TopicID string `json:"topic_id" gorm:"type:uuid;index;not null"`
	Topic   *Topic `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	Description string `json:"description" gorm:"type:text;not null"`
	Priority    string `json:"priority" gorm:"index"`
	// Titles of the papers backing the statement, stored as a JSON array.
	// May be empty when fewer papers were retained than the window spans.
	SupportingPapers datatypes.JSON `json:"supporting_papers" gorm:"type:jsonb"`
}

// TableName sets the explicit table name.
func (ResearchGap) TableName() string {
	return "research_gaps"
}

func (g *ResearchGap) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// SupportingPaperTitles decodes the stored title array.
func (g *ResearchGap) SupportingPaperTitles() []string {
	var out []string
	if len(g.SupportingPapers) > 0 {
		_ = json.Unmarshal(g.SupportingPapers, &out)
	}
	return out
}

// SetSupportingPaperTitles encodes the title list into the JSON column.
func (g *ResearchGap) SetSupportingPaperTitles(titles []string) {
	b, err := json.Marshal(titles)
	if err != nil {
		return
	}
	g.SupportingPapers = b
}

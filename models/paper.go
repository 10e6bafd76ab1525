package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Paper holds the metadata of one retrieved publication. Rows are immutable
// once inserted; the title is the de-duplication key within a search pass.
type Paper struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TopicID string `json:"topic_id" gorm:"type:uuid;index;not null"`
	Topic   *Topic `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	Title    string `json:"title" gorm:"not null"`
	Abstract string `json:"abstract,omitempty" gorm:"type:text"`
	// Ordered author names, stored as a JSON array.
	Authors datatypes.JSON `json:"authors" gorm:"type:jsonb"`

	URL           string     `json:"url,omitempty"`
	PDFURL        string     `json:"pdf_url,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`

	Source string `json:"source" gorm:"index"`
	// Coarse subject tag derived from the source's category, consumed by
	// the relevance filter.
	DomainHint string `json:"domain_hint,omitempty" gorm:"index"`
}

// TableName sets the explicit table name.
func (Paper) TableName() string {
	return "papers"
}

func (p *Paper) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AuthorList decodes the stored author array. A missing or malformed
// column yields an empty list.
func (p *Paper) AuthorList() []string {
	var out []string
	if len(p.Authors) > 0 {
		_ = json.Unmarshal(p.Authors, &out)
	}
	return out
}

// SetAuthorList encodes the ordered author names into the JSON column.
func (p *Paper) SetAuthorList(authors []string) {
	b, err := json.Marshal(authors)
	if err != nil {
		return
	}
	p.Authors = b
}

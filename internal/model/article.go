package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article represents a published-or-draft piece of content. The slug is the
// external routing key: globally unique and always derived from the title.
type Article struct {
	ID            uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Title         string         `json:"title" gorm:"size:255;not null"`
	Slug          string         `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Excerpt       string         `json:"excerpt,omitempty" gorm:"size:512"`
	Content       string         `json:"content" gorm:"type:longtext;not null"`
	FeaturedImage string         `json:"featured_image,omitempty" gorm:"size:512"`
	AuthorID      uuid.UUID      `json:"author_id" gorm:"type:char(36);not null;index"`
	Category      string         `json:"category" gorm:"size:100;not null;index"`
	Tags          TagList        `json:"tags" gorm:"type:text"`
	Featured      bool           `json:"featured" gorm:"default:false;index"`
	Published     bool           `json:"published" gorm:"default:false;index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

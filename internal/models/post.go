package models

import "time"

// PostModel is a blog post.
//
// PublishedAt is written exactly once, on the first transition into the
// published state, and is never cleared or updated afterwards — not even if
// the post later reverts to draft. Its non-nil-ness therefore means "has been
// published at least once in its history".
type PostModel struct {
	Base
	Title       string         `json:"title"        gorm:"not null"`
	Slug        string         `json:"slug"         gorm:"uniqueIndex;not null"`
	Text        string         `json:"text"         gorm:"type:longtext"`
	Summary     string         `json:"summary"`
	CategoryID  *string        `json:"category_id"  gorm:"index"`
	Category    *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Tags        StringSlice    `json:"tags"         gorm:"type:json;serializer:json"`
	IsPublished bool           `json:"is_published" gorm:"default:false;index"`
	PublishedAt *time.Time     `json:"published_at"`
}

func (PostModel) TableName() string { return "posts" }

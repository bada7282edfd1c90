package models

// CategoryModel groups posts.
type CategoryModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`
}

func (CategoryModel) TableName() string { return "categories" }

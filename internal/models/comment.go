package models

// CommentModel is a visitor comment on a post. Comments start unapproved and
// only become publicly visible after owner moderation.
type CommentModel struct {
	Base
	PostID   string     `json:"post_id"  gorm:"index;not null"`
	Post     *PostModel `json:"-"        gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Author   string     `json:"author"   gorm:"not null"`
	Mail     string     `json:"mail"`
	Text     string     `json:"text"     gorm:"type:text;not null"`
	Approved bool       `json:"approved" gorm:"default:false;index"`
	IP       string     `json:"-"`
	Agent    string     `json:"-"        gorm:"type:varchar(512)"`
}

func (CommentModel) TableName() string { return "comments" }

package post

type CreatePostDTO struct {
	Title       string   `json:"title" binding:"required"`
	Slug        string   `json:"slug" binding:"required"`
	Text        string   `json:"text"`
	Summary     string   `json:"summary"`
	CategoryID  *string  `json:"category_id"`
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"is_published"`
}

type UpdatePostDTO struct {
	Title       *string   `json:"title"`
	Slug        *string   `json:"slug"`
	Text        *string   `json:"text"`
	Summary     *string   `json:"summary"`
	CategoryID  *string   `json:"category_id"`
	Tags        *[]string `json:"tags"`
	IsPublished *bool     `json:"is_published"`
}

type ListQuery struct {
	Category string
	Tag      string
	Drafts   bool
}

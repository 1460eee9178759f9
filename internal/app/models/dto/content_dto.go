package dto

// CreateContentRequest carries a new post or event draft
type CreateContentRequest struct {
	Title   string `json:"title" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	Excerpt string `json:"excerpt"`
	Body    string `json:"body"`
}

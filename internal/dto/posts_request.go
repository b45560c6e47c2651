package dto

type GetPostsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

type SearchPostsRequest struct {
	Query  string `form:"q" binding:"required,min=2"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type NewsletterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

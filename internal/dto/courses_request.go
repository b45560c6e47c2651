package dto

type GetCoursesRequest struct {
	Category string `form:"category"`
	Query    string `form:"q"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

package dto

import "github.com/LearnHub/course-service/internal/model"

type GetPost struct {
	Post     model.FullPost `json:"post"`
	Comments int64          `json:"comments"`
}

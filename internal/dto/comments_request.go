package dto

import "github.com/google/uuid"

type CreateCommentRequest struct {
	SubjectType string     `json:"subject_type" binding:"required,oneof=course post"`
	SubjectID   uuid.UUID  `json:"subject_id" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Content     string     `json:"content" binding:"required,min=1,max=4000"`
}

type GetCommentsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ToggleReactionRequest carries the requested type; null or "" clears the reaction.
type ToggleReactionRequest struct {
	Type *string `json:"type"`
}

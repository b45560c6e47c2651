package dto

import (
	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
)

type ReactionSnapshot struct {
	TargetID     uuid.UUID          `json:"target_id"`
	Reactions    []model.Reaction   `json:"reactions"`
	UserReaction model.ReactionType `json:"user_reaction"`
}

type CommentsCount struct {
	Count int64 `json:"count"`
}

package model

import "github.com/google/uuid"

type ReactionType string

const (
	ReactionNone  ReactionType = ""
	ReactionLike  ReactionType = "like"
	ReactionHeart ReactionType = "heart"
	ReactionLaugh ReactionType = "laugh"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

var ReactionTypes = []ReactionType{
	ReactionLike,
	ReactionHeart,
	ReactionLaugh,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

func (t ReactionType) Valid() bool {
	for _, rt := range ReactionTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// Reaction is one bucket: every user who picked Type on a comment or reply.
type Reaction struct {
	Type  ReactionType `json:"type"`
	Count int          `json:"count"`
	Users []uuid.UUID  `json:"users"`
}

// ReactionRow is the stored form of a single user's reaction on a target.
type ReactionRow struct {
	TargetID uuid.UUID    `json:"target_id"`
	UserID   uuid.UUID    `json:"user_id"`
	Type     ReactionType `json:"type"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type SubjectType string

const (
	SubjectCourse SubjectType = "course"
	SubjectPost   SubjectType = "post"
)

func (t SubjectType) Valid() bool {
	return t == SubjectCourse || t == SubjectPost
}

type Comment struct {
	ID           uuid.UUID    `json:"id"`
	SubjectType  SubjectType  `json:"subject_type"`
	SubjectID    uuid.UUID    `json:"subject_id"`
	AuthorID     uuid.UUID    `json:"author_id"`
	AuthorName   string       `json:"author_name"`
	Content      string       `json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
	Replies      []Reply      `json:"replies,omitempty"`
	Reactions    []Reaction   `json:"reactions,omitempty"`
	UserReaction ReactionType `json:"user_reaction,omitempty"`
}

type Reply struct {
	ID           uuid.UUID    `json:"id"`
	CommentID    uuid.UUID    `json:"comment_id"`
	AuthorID     uuid.UUID    `json:"author_id"`
	AuthorName   string       `json:"author_name"`
	Content      string       `json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
	Reactions    []Reaction   `json:"reactions,omitempty"`
	UserReaction ReactionType `json:"user_reaction,omitempty"`
}

// CommentRow is a single stored comment; replies share the table and carry a ParentID.
type CommentRow struct {
	ID          uuid.UUID   `json:"id"`
	ParentID    *uuid.UUID  `json:"parent_id"`
	SubjectType SubjectType `json:"subject_type"`
	SubjectID   uuid.UUID   `json:"subject_id"`
	AuthorID    uuid.UUID   `json:"author_id"`
	AuthorName  string      `json:"author_name"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"created_at"`
}

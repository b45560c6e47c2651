package dto

import (
	"time"

	"github.com/google/uuid"
)

type MQCommentSubmittedMsg struct {
	CommentID   uuid.UUID  `json:"comment_id"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	SubjectType string     `json:"subject_type"`
	SubjectID   uuid.UUID  `json:"subject_id"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
}

type MQReactionSubmittedMsg struct {
	TargetID  uuid.UUID `json:"target_id"`
	UserID    uuid.UUID `json:"user_id"`
	Reaction  string    `json:"reaction"`
	Total     int       `json:"total"`
	ToggledAt time.Time `json:"toggled_at"`
}

type MQEnrollmentRecordedMsg struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	UserID       uuid.UUID `json:"user_id"`
	CourseID     uuid.UUID `json:"course_id"`
	CourseTitle  string    `json:"course_title"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

type MQNewsletterSubscribedMsg struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

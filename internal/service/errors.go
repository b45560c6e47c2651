package service

import (
	"errors"

	"github.com/LearnHub/course-service/internal/reaction"
)

var (
	ErrInternal            = errors.New("internal server error")
	ErrCourseNotFound      = errors.New("course not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrNotEnrolled         = errors.New("user is not enrolled in this course")
	ErrTrainerNotFound     = errors.New("trainer not found")
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrInvalidSubjectType  = errors.New("invalid subject type")
	ErrSubjectNotFound     = errors.New("commented subject not found")
	ErrParentMismatch      = errors.New("parent comment belongs to another subject")
	ErrEmptyContent        = errors.New("comment content is empty")
	ErrSubscriberNotFound  = errors.New("email is not subscribed")
	ErrUnknownReactionType = reaction.ErrUnknownReactionType
	ErrFailedToFetchUser   = errors.New("failed to fetch user")
)

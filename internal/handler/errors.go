package handler

import (
	"errors"
	"net/http"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/service"
	"github.com/gin-gonic/gin"
)

var (
	errNotAuthorized    = errors.New("user is not authorized")
	errInvalidCourseID  = errors.New("invalid course ID")
	errInvalidLessonID  = errors.New("invalid lesson ID")
	errInvalidTrainerID = errors.New("invalid trainer ID")
	errInvalidPostID    = errors.New("invalid post ID")
	errInvalidCommentID = errors.New("invalid comment ID")
	errInvalidSubjectID = errors.New("invalid subject ID")
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrLessonNotFound),
		errors.Is(err, service.ErrTrainerNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrSubscriberNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidSubjectType),
		errors.Is(err, service.ErrParentMismatch),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrUnknownReactionType):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotEnrolled):
		return http.StatusForbidden
	case errors.Is(err, service.ErrFailedToFetchUser):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusOf(err), dto.NewErrorResponse(err))
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(err))
}

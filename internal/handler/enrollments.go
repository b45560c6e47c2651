package handler

import (
	"context"
	"net/http"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) enrollmentsEnroll(c *gin.Context) {
	user := h.getUserFromRequest(c)

	courseID, ok := uuidParam(c, "courseID")
	if !ok {
		badRequest(c, errInvalidCourseID)
		return
	}

	enrollment, err := h.services.Enrollment.Enroll(c.Request.Context(), user.ID, courseID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

func (h *Handler) enrollmentsGetMy(c *gin.Context) {
	user := h.getUserFromRequest(c)

	enrollments, err := h.services.Enrollment.FindMy(c.Request.Context(), user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

func (h *Handler) enrollmentsProgress(c *gin.Context) {
	user := h.getUserFromRequest(c)

	courseID, ok := uuidParam(c, "courseID")
	if !ok {
		badRequest(c, errInvalidCourseID)
		return
	}

	enrollment, err := h.services.Enrollment.FindProgress(c.Request.Context(), user.ID, courseID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

type lessonChange func(ctx context.Context, userID uuid.UUID, courseID uuid.UUID, lessonID uuid.UUID) (*model.Enrollment, error)

func (h *Handler) changeLesson(c *gin.Context, change lessonChange) {
	user := h.getUserFromRequest(c)

	courseID, ok := uuidParam(c, "courseID")
	if !ok {
		badRequest(c, errInvalidCourseID)
		return
	}
	lessonID, ok := uuidParam(c, "lessonID")
	if !ok {
		badRequest(c, errInvalidLessonID)
		return
	}

	enrollment, err := change(c.Request.Context(), user.ID, courseID, lessonID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

func (h *Handler) enrollmentsCompleteLesson(c *gin.Context) {
	h.changeLesson(c, h.services.Enrollment.CompleteLesson)
}

func (h *Handler) enrollmentsUncompleteLesson(c *gin.Context) {
	h.changeLesson(c, h.services.Enrollment.UncompleteLesson)
}

func (h *Handler) enrollmentsStudentsCount(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseID")
	if !ok {
		badRequest(c, errInvalidCourseID)
		return
	}

	count, err := h.services.Enrollment.StudentsCount(c.Request.Context(), courseID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StudentsCount{Students: count})
}

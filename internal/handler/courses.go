package handler

import (
	"net/http"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) coursesGet(c *gin.Context) {
	var input dto.GetCoursesRequest
	if err := c.ShouldBindQuery(&input); err != nil {
		badRequest(c, err)
		return
	}

	courses, err := h.services.Course.FindAll(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (h *Handler) coursesGetByID(c *gin.Context) {
	courseID, ok := uuidParam(c, "courseID")
	if !ok {
		badRequest(c, errInvalidCourseID)
		return
	}

	course, err := h.services.Course.FindByID(c.Request.Context(), courseID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *Handler) coursesCategories(c *gin.Context) {
	categories, err := h.services.Course.Categories(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *Handler) trainersGet(c *gin.Context) {
	trainers, err := h.services.Trainer.FindAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trainers)
}

func (h *Handler) trainersGetByID(c *gin.Context) {
	trainerID, ok := uuidParam(c, "trainerID")
	if !ok {
		badRequest(c, errInvalidTrainerID)
		return
	}

	profile, err := h.services.Trainer.FindByID(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

package handler

import (
	"net/http"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/reaction"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) commentsCreate(c *gin.Context) {
	user := h.getUserFromRequest(c)

	var input dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	createdComment, err := h.services.Comment.Create(c.Request.Context(), *user, input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdComment)
}

func subjectParams(c *gin.Context) (model.SubjectType, uuid.UUID, bool) {
	subjectType := model.SubjectType(c.Param("subjectType"))
	subjectID, ok := uuidParam(c, "subjectID")
	return subjectType, subjectID, ok
}

func (h *Handler) commentsGet(c *gin.Context) {
	subjectType, subjectID, ok := subjectParams(c)
	if !ok {
		badRequest(c, errInvalidSubjectID)
		return
	}

	var input dto.GetCommentsRequest
	if err := c.ShouldBindQuery(&input); err != nil {
		badRequest(c, err)
		return
	}

	comments, err := h.services.Comment.FindSubjectComments(c.Request.Context(), subjectType, subjectID, h.viewerID(c), input.Limit, input.Offset)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *Handler) commentsCount(c *gin.Context) {
	subjectType, subjectID, ok := subjectParams(c)
	if !ok {
		badRequest(c, errInvalidSubjectID)
		return
	}

	count, err := h.services.Comment.Count(c.Request.Context(), subjectType, subjectID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CommentsCount{Count: count})
}

func (h *Handler) commentsDelete(c *gin.Context) {
	user := h.getUserFromRequest(c)

	commentID, ok := uuidParam(c, "commentID")
	if !ok {
		badRequest(c, errInvalidCommentID)
		return
	}

	if err := h.services.Comment.Delete(c.Request.Context(), commentID, user.ID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "deleted"))
}

func (h *Handler) commentsToggleReaction(c *gin.Context) {
	user := h.getUserFromRequest(c)

	commentID, ok := uuidParam(c, "commentID")
	if !ok {
		badRequest(c, errInvalidCommentID)
		return
	}

	var input dto.ToggleReactionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	requested := model.ReactionNone
	if input.Type != nil {
		parsed, err := reaction.Parse(*input.Type)
		if err != nil {
			badRequest(c, err)
			return
		}
		requested = parsed
	}

	snapshot, err := h.services.Comment.ToggleReaction(c.Request.Context(), commentID, user.ID, requested)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

package handler

import (
	"net/http"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/gin-gonic/gin"
)

func (h *Handler) postsGet(c *gin.Context) {
	var input dto.GetPostsRequest
	if err := c.ShouldBindQuery(&input); err != nil {
		badRequest(c, err)
		return
	}

	posts, err := h.services.Post.FindAll(c.Request.Context(), input.Limit, input.Offset)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *Handler) postsGetByID(c *gin.Context) {
	postID, ok := uuidParam(c, "postID")
	if !ok {
		badRequest(c, errInvalidPostID)
		return
	}

	post, err := h.services.Post.FindByID(c.Request.Context(), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	comments, err := h.services.Comment.Count(c.Request.Context(), model.SubjectPost, postID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GetPost{Post: *post, Comments: comments})
}

func (h *Handler) postsSearchByTitle(c *gin.Context) {
	var input dto.SearchPostsRequest
	if err := c.ShouldBindQuery(&input); err != nil {
		badRequest(c, err)
		return
	}

	posts, err := h.services.Post.SearchByTitle(c.Request.Context(), input.Query, input.Limit, input.Offset)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *Handler) newsletterSubscribe(c *gin.Context) {
	var input dto.NewsletterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	subscriber, err := h.services.Newsletter.Subscribe(c.Request.Context(), input.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscriber)
}

func (h *Handler) newsletterUnsubscribe(c *gin.Context) {
	var input dto.NewsletterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.services.Newsletter.Unsubscribe(c.Request.Context(), input.Email); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "unsubscribed"))
}

package handler

import (
	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const userCtxKey = "cached-user"

type Handler struct {
	logger   *zap.Logger
	services *service.Service
}

func New(logger *zap.Logger, services *service.Service) *Handler {
	return &Handler{
		logger:   logger,
		services: services,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.loggerMiddleware)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{viper.GetString("client.origin")},
		AllowMethods:     []string{"POST", "GET", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := r.Group("/api/v1")
	{
		courses := v1.Group("/courses")
		{
			courses.GET("", h.coursesGet)
			courses.GET("/categories", h.coursesCategories)

			course := courses.Group("/:courseID")
			{
				course.GET("", h.coursesGetByID)
				course.GET("/students/count", h.enrollmentsStudentsCount)
				course.POST("/enroll", h.authMiddleware, h.enrollmentsEnroll)
				course.GET("/progress", h.authMiddleware, h.enrollmentsProgress)
				course.POST("/lessons/:lessonID/complete", h.authMiddleware, h.enrollmentsCompleteLesson)
				course.DELETE("/lessons/:lessonID/complete", h.authMiddleware, h.enrollmentsUncompleteLesson)
			}
		}

		trainers := v1.Group("/trainers")
		{
			trainers.GET("", h.trainersGet)
			trainers.GET("/:trainerID", h.trainersGetByID)
		}

		enrollments := v1.Group("/enrollments")
		{
			enrollments.GET("/my", h.authMiddleware, h.enrollmentsGetMy)
		}

		posts := v1.Group("/posts")
		{
			posts.GET("", h.postsGet)
			posts.GET("/search", h.postsSearchByTitle)
			posts.GET("/:postID", h.postsGetByID)
		}

		newsletter := v1.Group("/newsletter")
		{
			newsletter.POST("/subscribe", h.newsletterSubscribe)
			newsletter.POST("/unsubscribe", h.newsletterUnsubscribe)
		}

		comments := v1.Group("/comments")
		{
			comments.POST("", h.authMiddleware, h.commentsCreate)
			comments.GET("/:subjectType/:subjectID", h.notRequiredAuthMiddleware, h.commentsGet)
			comments.GET("/:subjectType/:subjectID/count", h.commentsCount)
			comments.DELETE("/:commentID", h.authMiddleware, h.commentsDelete)
			comments.POST("/:commentID/reaction", h.authMiddleware, h.commentsToggleReaction)
		}
	}

	return r
}

func (h *Handler) getUserFromRequest(c *gin.Context) *model.CachedUser {
	userReq, _ := c.Get(userCtxKey)

	user, ok := userReq.(model.CachedUser)
	if !ok {
		return nil
	}

	return &user
}

// viewerID is uuid.Nil for anonymous requests.
func (h *Handler) viewerID(c *gin.Context) uuid.UUID {
	if user := h.getUserFromRequest(c); user != nil {
		return user.ID
	}
	return uuid.Nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

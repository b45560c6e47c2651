package service

import (
	"context"
	"time"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const MAX_LIMIT = 50
const DEFAULT_LIMIT = 10

// maxLimit clamps page sizes; pagination.max-limit may lower the ceiling.
func maxLimit(limit *int) {
	ceiling := MAX_LIMIT
	if configured := viper.GetInt("pagination.max-limit"); configured > 0 && configured < MAX_LIMIT {
		ceiling = configured
	}

	if *limit <= 0 {
		*limit = DEFAULT_LIMIT
	}
	if *limit > ceiling {
		*limit = ceiling
	}
}

func cacheTTL() time.Duration {
	if ttl := viper.GetDuration("cache.ttl"); ttl > 0 {
		return ttl
	}
	return time.Hour
}

// Broker is the part of the message broker the services rely on.
type Broker interface {
	Publish(ctx context.Context, queue string, body interface{}) error
	Consume(queue string) (<-chan amqp.Delivery, error)
}

// publishAsync notifies external listeners without blocking the caller.
// Delivery failures are logged and never undo the change that was published.
func publishAsync(logger *zap.Logger, mq Broker, queue string, body interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := mq.Publish(ctx, queue, body); err != nil {
			logger.Sugar().Errorf("failed to publish message to queue(%s): %s", queue, err.Error())
		}
	}()
}

type Course interface {
	FindAll(ctx context.Context, input dto.GetCoursesRequest) ([]*model.Course, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.FullCourse, error)
	Categories(ctx context.Context) ([]*model.CategoryCount, error)
}

type Trainer interface {
	FindAll(ctx context.Context) ([]*model.Trainer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.TrainerProfile, error)
}

type Enrollment interface {
	Enroll(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Enrollment, error)
	FindMy(ctx context.Context, userID uuid.UUID) ([]*dto.EnrollmentWithCourse, error)
	FindProgress(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Enrollment, error)
	CompleteLesson(ctx context.Context, userID uuid.UUID, courseID uuid.UUID, lessonID uuid.UUID) (*model.Enrollment, error)
	UncompleteLesson(ctx context.Context, userID uuid.UUID, courseID uuid.UUID, lessonID uuid.UUID) (*model.Enrollment, error)
	StudentsCount(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type Post interface {
	FindAll(ctx context.Context, limit int, offset int) ([]*model.FullPost, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.FullPost, error)
	SearchByTitle(ctx context.Context, query string, limit int, offset int) ([]*model.FullPost, error)
}

type Newsletter interface {
	Subscribe(ctx context.Context, email string) (*model.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
}

type Comment interface {
	Create(ctx context.Context, author model.CachedUser, input dto.CreateCommentRequest) (*model.CommentRow, error)
	FindSubjectComments(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID, viewerID uuid.UUID, limit int, offset int) ([]*model.Comment, error)
	Count(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) (int64, error)
	Delete(ctx context.Context, commentID uuid.UUID, authorID uuid.UUID) error
	ToggleReaction(ctx context.Context, targetID uuid.UUID, userID uuid.UUID, requested model.ReactionType) (*dto.ReactionSnapshot, error)
}

type UserCache interface {
	CreateOrGet(ctx context.Context, id uuid.UUID, accessToken string) (*model.CachedUser, error)
	Create(ctx context.Context, cachedUser model.CachedUser) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
	ConsumeUserUpdates(ctx context.Context)
}

type Service struct {
	Course
	Trainer
	Enrollment
	Post
	Newsletter
	Comment
	UserCache
}

func New(logger *zap.Logger, repo *repository.Repository, mq Broker) *Service {
	return &Service{
		Course:     newCourseService(logger, repo),
		Trainer:    newTrainerService(logger, repo),
		Enrollment: newEnrollmentService(logger, repo, mq),
		Post:       newPostService(logger, repo),
		Newsletter: newNewsletterService(logger, repo, mq),
		Comment:    newCommentService(logger, repo, mq),
		UserCache:  newUserCacheService(logger, repo, mq),
	}
}

func (s *Service) StartConsumeAll(ctx context.Context) {
	go s.UserCache.ConsumeUserUpdates(ctx)
}

package postgres

import (
	"context"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const MAX_LIMIT = 50
const DEFAULT_LIMIT = 10

func maxLimit(limit *int) {
	if *limit <= 0 {
		*limit = DEFAULT_LIMIT
	}
	if *limit > MAX_LIMIT {
		*limit = MAX_LIMIT
	}
}

type Course interface {
	FindAll(ctx context.Context, category string, query string, limit int, offset int) ([]*model.Course, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	FindByTrainer(ctx context.Context, trainerID uuid.UUID) ([]*model.Course, error)
	FindLessons(ctx context.Context, courseID uuid.UUID) ([]model.Lesson, error)
	Categories(ctx context.Context) ([]*model.CategoryCount, error)
}

type Trainer interface {
	FindAll(ctx context.Context) ([]*model.Trainer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Trainer, error)
}

type Enrollment interface {
	Create(ctx context.Context, enrollment model.Enrollment) (*model.Enrollment, bool, error)
	FindByUserAndCourse(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Enrollment, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Enrollment, error)
	UpdateProgress(ctx context.Context, enrollment model.Enrollment) error
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type Post interface {
	FindAll(ctx context.Context, limit int, offset int) ([]*model.FullPost, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.FullPost, error)
	SearchByTitle(ctx context.Context, query string, limit int, offset int) ([]*model.FullPost, error)
	IncrViews(ctx context.Context, id uuid.UUID) error
}

type Comment interface {
	Create(ctx context.Context, comment model.CommentRow) (*model.CommentRow, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CommentRow, error)
	FindSubjectComments(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID, limit int, offset int) ([]*model.CommentRow, error)
	FindReplies(ctx context.Context, parentIDs []uuid.UUID) ([]*model.CommentRow, error)
	CountBySubject(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID, authorID uuid.UUID) error
}

// ReactionDecider gets a target's stored reactions and returns the reaction
// the toggling user ends up with.
type ReactionDecider func(rows []model.ReactionRow) (model.ReactionType, error)

type Reaction interface {
	FindByTargets(ctx context.Context, targetIDs []uuid.UUID) ([]model.ReactionRow, error)
	Toggle(ctx context.Context, targetID uuid.UUID, userID uuid.UUID, decide ReactionDecider) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, email string) (*model.Subscriber, bool, error)
	Unsubscribe(ctx context.Context, email string) error
}

type UserCache interface {
	Create(ctx context.Context, cachedUser model.CachedUser) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
}

type PostgresRepository struct {
	Course
	Trainer
	Enrollment
	Post
	Comment
	Reaction
	Subscriber
	UserCache
}

func New(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		Course:     newCourseRepo(db),
		Trainer:    newTrainerRepo(db),
		Enrollment: newEnrollmentRepo(db),
		Post:       newPostRepo(db),
		Comment:    newCommentRepo(db),
		Reaction:   newReactionRepo(db),
		Subscriber: newSubscriberRepo(db),
		UserCache:  newUserCacheRepo(db),
	}
}

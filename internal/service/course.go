package service

import (
	"context"
	"errors"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type courseService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newCourseService(logger *zap.Logger, repo *repository.Repository) Course {
	return &courseService{
		logger: logger,
		repo:   repo,
	}
}

func (s *courseService) FindAll(ctx context.Context, input dto.GetCoursesRequest) ([]*model.Course, error) {
	maxLimit(&input.Limit)
	if input.Offset < 0 {
		input.Offset = 0
	}

	key := redisrepo.CoursesKey(input.Category, input.Query, input.Limit, input.Offset)
	cachedCourses, err := redisrepo.GetMany[model.Course](s.repo.Redis.Default, ctx, key)
	if err == nil {
		return nonNil(cachedCourses), nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get courses(%s) from redis: %s", key, err.Error())
		return nil, ErrInternal
	}

	courses, err := s.repo.Postgres.Course.FindAll(ctx, input.Category, input.Query, input.Limit, input.Offset)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find courses(%s) from postgres: %s", key, err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, courses, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set courses(%s) in redis: %s", key, err.Error())
	}

	return nonNil(courses), nil
}

// FindByID loads the course, then its lessons, trainer and student counter concurrently.
func (s *courseService) FindByID(ctx context.Context, id uuid.UUID) (*model.FullCourse, error) {
	key := redisrepo.CourseKey(id.String())
	cachedCourse, err := redisrepo.Get[model.FullCourse](s.repo.Redis.Default, ctx, key)
	if err == nil {
		if cachedCourse == nil {
			return nil, ErrCourseNotFound
		}
		return cachedCourse, nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get course(%s) from redis: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	course, err := s.repo.Postgres.Course.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		s.logger.Sugar().Errorf("failed to find course(%s) from postgres: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	full := &model.FullCourse{Course: *course}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lessons, err := s.repo.Postgres.Course.FindLessons(gctx, id)
		if err != nil {
			s.logger.Sugar().Errorf("failed to find course(%s) lessons from postgres: %s", id.String(), err.Error())
			return ErrInternal
		}
		if lessons == nil {
			lessons = []model.Lesson{}
		}
		full.Lessons = lessons
		return nil
	})
	g.Go(func() error {
		trainer, err := s.repo.Postgres.Trainer.FindByID(gctx, course.TrainerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			s.logger.Sugar().Errorf("failed to find course(%s) trainer(%s) from postgres: %s", id.String(), course.TrainerID.String(), err.Error())
			return ErrInternal
		}
		full.Trainer = trainer
		return nil
	})
	g.Go(func() error {
		students, err := s.repo.Postgres.Enrollment.CountByCourse(gctx, id)
		if err != nil {
			s.logger.Sugar().Errorf("failed to count course(%s) students from postgres: %s", id.String(), err.Error())
			return ErrInternal
		}
		full.Students = students
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, full, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set course(%s) in redis: %s", id.String(), err.Error())
	}

	return full, nil
}

func (s *courseService) Categories(ctx context.Context) ([]*model.CategoryCount, error) {
	cachedCategories, err := redisrepo.GetMany[model.CategoryCount](s.repo.Redis.Default, ctx, redisrepo.CATEGORIES_KEY)
	if err == nil {
		return nonNil(cachedCategories), nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get course categories from redis: %s", err.Error())
		return nil, ErrInternal
	}

	categories, err := s.repo.Postgres.Course.Categories(ctx)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find course categories from postgres: %s", err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.CATEGORIES_KEY, categories, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set course categories in redis: %s", err.Error())
	}

	return nonNil(categories), nil
}

func nonNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}

package service

import (
	"context"
	"errors"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/rabbitmq"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type enrollmentService struct {
	logger *zap.Logger
	repo   *repository.Repository
	mq     Broker
}

func newEnrollmentService(logger *zap.Logger, repo *repository.Repository, mq Broker) Enrollment {
	return &enrollmentService{
		logger: logger,
		repo:   repo,
		mq:     mq,
	}
}

// Enroll is idempotent: a second call returns the enrollment created by the first.
func (s *enrollmentService) Enroll(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.repo.Postgres.Course.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		s.logger.Sugar().Errorf("failed to find course(%s) from postgres: %s", courseID.String(), err.Error())
		return nil, ErrInternal
	}
	if !course.Published {
		return nil, ErrCourseNotFound
	}

	enrollment, created, err := s.repo.Postgres.Enrollment.Create(ctx, model.Enrollment{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []uuid.UUID{},
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to enroll user(%s) in course(%s): %s", userID.String(), courseID.String(), err.Error())
		return nil, ErrInternal
	}
	if !created {
		return enrollment, nil
	}

	if err := s.repo.Redis.Default.IncrByIfExists(ctx, redisrepo.StudentsCountKey(courseID.String()), 1); err != nil {
		s.logger.Sugar().Errorf("failed to increment course(%s) students count in redis: %s", courseID.String(), err.Error())
	}
	if err := s.repo.Redis.Default.Del(ctx, redisrepo.CourseKey(courseID.String())).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete course(%s) from redis: %s", courseID.String(), err.Error())
	}

	publishAsync(s.logger, s.mq, rabbitmq.ENROLLMENT_RECORDED_QUEUE, dto.MQEnrollmentRecordedMsg{
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		CourseTitle:  course.Title,
		EnrolledAt:   enrollment.EnrolledAt,
	})

	return enrollment, nil
}

func (s *enrollmentService) FindMy(ctx context.Context, userID uuid.UUID) ([]*dto.EnrollmentWithCourse, error) {
	enrollments, err := s.repo.Postgres.Enrollment.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find user(%s) enrollments from postgres: %s", userID.String(), err.Error())
		return nil, ErrInternal
	}

	result := make([]*dto.EnrollmentWithCourse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		course, err := s.repo.Postgres.Course.FindByID(ctx, enrollment.CourseID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			s.logger.Sugar().Errorf("failed to find course(%s) from postgres: %s", enrollment.CourseID.String(), err.Error())
			return nil, ErrInternal
		}

		result = append(result, &dto.EnrollmentWithCourse{
			Enrollment: *enrollment,
			Course:     *course,
		})
	}

	return result, nil
}

func (s *enrollmentService) FindProgress(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.repo.Postgres.Enrollment.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotEnrolled
		}
		s.logger.Sugar().Errorf("failed to find user(%s) enrollment in course(%s) from postgres: %s", userID.String(), courseID.String(), err.Error())
		return nil, ErrInternal
	}

	return enrollment, nil
}

func (s *enrollmentService) CompleteLesson(ctx context.Context, userID uuid.UUID, courseID uuid.UUID, lessonID uuid.UUID) (*model.Enrollment, error) {
	return s.changeProgress(ctx, userID, courseID, lessonID, (*model.Enrollment).CompleteLesson)
}

func (s *enrollmentService) UncompleteLesson(ctx context.Context, userID uuid.UUID, courseID uuid.UUID, lessonID uuid.UUID) (*model.Enrollment, error) {
	return s.changeProgress(ctx, userID, courseID, lessonID, (*model.Enrollment).UncompleteLesson)
}

func (s *enrollmentService) changeProgress(ctx context.Context, userID uuid.UUID, courseID uuid.UUID, lessonID uuid.UUID, apply func(*model.Enrollment, uuid.UUID, int) bool) (*model.Enrollment, error) {
	enrollment, err := s.FindProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.repo.Postgres.Course.FindLessons(ctx, courseID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find course(%s) lessons from postgres: %s", courseID.String(), err.Error())
		return nil, ErrInternal
	}

	found := false
	for _, lesson := range lessons {
		if lesson.ID == lessonID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrLessonNotFound
	}

	if !apply(enrollment, lessonID, len(lessons)) {
		return enrollment, nil
	}

	if err := s.repo.Postgres.Enrollment.UpdateProgress(ctx, *enrollment); err != nil {
		s.logger.Sugar().Errorf("failed to update user(%s) progress in course(%s): %s", userID.String(), courseID.String(), err.Error())
		return nil, ErrInternal
	}

	return enrollment, nil
}

func (s *enrollmentService) StudentsCount(ctx context.Context, courseID uuid.UUID) (int64, error) {
	key := redisrepo.StudentsCountKey(courseID.String())
	count, err := s.repo.Redis.Default.Get(ctx, key).Int64()
	if err == nil {
		return count, nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get course(%s) students count from redis: %s", courseID.String(), err.Error())
		return 0, ErrInternal
	}

	count, err = s.repo.Postgres.Enrollment.CountByCourse(ctx, courseID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to count course(%s) students from postgres: %s", courseID.String(), err.Error())
		return 0, ErrInternal
	}

	if err := s.repo.Redis.Default.Set(ctx, key, count, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set course(%s) students count in redis: %s", courseID.String(), err.Error())
	}

	return count, nil
}

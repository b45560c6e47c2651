package service

import (
	"context"
	"errors"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type trainerService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newTrainerService(logger *zap.Logger, repo *repository.Repository) Trainer {
	return &trainerService{
		logger: logger,
		repo:   repo,
	}
}

func (s *trainerService) FindAll(ctx context.Context) ([]*model.Trainer, error) {
	cachedTrainers, err := redisrepo.GetMany[model.Trainer](s.repo.Redis.Default, ctx, redisrepo.TRAINERS_KEY)
	if err == nil {
		return nonNil(cachedTrainers), nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get trainers from redis: %s", err.Error())
		return nil, ErrInternal
	}

	trainers, err := s.repo.Postgres.Trainer.FindAll(ctx)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find trainers from postgres: %s", err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.TRAINERS_KEY, trainers, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set trainers in redis: %s", err.Error())
	}

	return nonNil(trainers), nil
}

func (s *trainerService) FindByID(ctx context.Context, id uuid.UUID) (*model.TrainerProfile, error) {
	key := redisrepo.TrainerKey(id.String())
	cachedProfile, err := redisrepo.Get[model.TrainerProfile](s.repo.Redis.Default, ctx, key)
	if err == nil && cachedProfile != nil {
		return cachedProfile, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get trainer(%s) from redis: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	trainer, err := s.repo.Postgres.Trainer.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		s.logger.Sugar().Errorf("failed to find trainer(%s) from postgres: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	courses, err := s.repo.Postgres.Course.FindByTrainer(ctx, id)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find trainer(%s) courses from postgres: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	profile := &model.TrainerProfile{
		Trainer: *trainer,
		Courses: make([]model.Course, 0, len(courses)),
	}
	for _, course := range courses {
		profile.Courses = append(profile.Courses, *course)
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, profile, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set trainer(%s) in redis: %s", id.String(), err.Error())
	}

	return profile, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type postService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newPostService(logger *zap.Logger, repo *repository.Repository) Post {
	return &postService{
		logger: logger,
		repo:   repo,
	}
}

func (s *postService) FindAll(ctx context.Context, limit int, offset int) ([]*model.FullPost, error) {
	maxLimit(&limit)
	if offset < 0 {
		offset = 0
	}

	key := redisrepo.PostsKey(limit, offset)
	cachedPosts, err := redisrepo.GetMany[model.FullPost](s.repo.Redis.Default, ctx, key)
	if err == nil {
		return nonNil(cachedPosts), nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get posts(%s) from redis: %s", key, err.Error())
		return nil, ErrInternal
	}

	posts, err := s.repo.Postgres.Post.FindAll(ctx, limit, offset)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find posts(%s) from postgres: %s", key, err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, posts, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set posts(%s) in redis: %s", key, err.Error())
	}

	return nonNil(posts), nil
}

// FindByID counts a view for every successful read, cached or not.
func (s *postService) FindByID(ctx context.Context, id uuid.UUID) (*model.FullPost, error) {
	key := redisrepo.PostKey(id.String())
	cachedPost, err := redisrepo.Get[model.FullPost](s.repo.Redis.Default, ctx, key)
	if err == nil {
		if cachedPost == nil {
			return nil, ErrPostNotFound
		}
		s.incrViews(cachedPost.Post.ID)
		return cachedPost, nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get post(%s) from redis: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	post, err := s.repo.Postgres.Post.FindByID(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Sugar().Errorf("failed to find post(%s) from postgres: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	// missing posts are cached as null too
	if err := s.repo.Redis.Default.SetJSON(ctx, key, post, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set post(%s) in redis: %s", id.String(), err.Error())
	}

	if post == nil {
		return nil, ErrPostNotFound
	}

	s.incrViews(post.Post.ID)
	return post, nil
}

func (s *postService) incrViews(postID uuid.UUID) {
	go func(id uuid.UUID) {
		if err := s.repo.Postgres.Post.IncrViews(context.Background(), id); err != nil {
			s.logger.Sugar().Errorf("failed to increment views for post(%s): %s", id.String(), err.Error())
		}
	}(postID)
}

func (s *postService) SearchByTitle(ctx context.Context, query string, limit int, offset int) ([]*model.FullPost, error) {
	maxLimit(&limit)
	if offset < 0 {
		offset = 0
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []*model.FullPost{}, nil
	}

	posts, err := s.repo.Postgres.Post.SearchByTitle(ctx, query, limit, offset)
	if err != nil {
		s.logger.Sugar().Errorf("failed to search posts by title(%s) from postgres: %s", query, err.Error())
		return nil, ErrInternal
	}

	return nonNil(posts), nil
}

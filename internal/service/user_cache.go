package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/rabbitmq"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/LearnHub/course-service/internal/repository/postgres"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type userCacheService struct {
	logger     *zap.Logger
	repo       *repository.Repository
	mq         Broker
	httpClient *http.Client
}

func newUserCacheService(logger *zap.Logger, repo *repository.Repository, mq Broker) UserCache {
	return &userCacheService{
		logger:     logger,
		repo:       repo,
		mq:         mq,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// CreateOrGet returns the cached profile of id, asking the auth provider on a miss.
func (s *userCacheService) CreateOrGet(ctx context.Context, id uuid.UUID, accessToken string) (*model.CachedUser, error) {
	cachedUser, err := s.FindByID(ctx, id)
	if err == nil {
		return cachedUser, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	fetchedUser, err := s.fetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if fetchedUser.ID != id {
		s.logger.Sugar().Errorf("auth provider returned user(%s) for token of user(%s)", fetchedUser.ID.String(), id.String())
		return nil, ErrFailedToFetchUser
	}

	if err := s.Create(ctx, *fetchedUser); err != nil {
		return nil, err
	}

	return fetchedUser, nil
}

func (s *userCacheService) fetchUser(ctx context.Context, accessToken string) (*model.CachedUser, error) {
	endpoint := "/users/@me"
	url := viper.GetString("auth.api") + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create request to auth provider: %s", err.Error())
		return nil, ErrInternal
	}

	req.Header.Add("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Sugar().Errorf("failed to send request to auth provider: %s", err.Error())
		return nil, ErrFailedToFetchUser
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Sugar().Errorf("failed to read response body from auth provider: %s", err.Error())
		return nil, ErrInternal
	}

	if resp.StatusCode != http.StatusOK {
		var bodyJSON map[string]interface{}
		if err := json.Unmarshal(body, &bodyJSON); err != nil {
			s.logger.Sugar().Errorf("failed to decode error response from auth provider: %s", err.Error())
		} else {
			s.logger.Sugar().Errorf("ERROR from auth provider endpoint(%s), code(%d), details: %s", endpoint, resp.StatusCode, bodyJSON["details"])
		}
		return nil, ErrFailedToFetchUser
	}

	var user model.CachedUser
	if err := json.Unmarshal(body, &user); err != nil {
		s.logger.Sugar().Errorf("failed to decode user response body from auth provider: %s", err.Error())
		return nil, ErrInternal
	}

	return &user, nil
}

func (s *userCacheService) Create(ctx context.Context, cachedUser model.CachedUser) error {
	if err := s.repo.Postgres.UserCache.Create(ctx, cachedUser); err != nil {
		s.logger.Sugar().Errorf("failed to create cached user(%s): %s", cachedUser.ID.String(), err.Error())
		return ErrInternal
	}

	return nil
}

func (s *userCacheService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if err := s.repo.Postgres.UserCache.Update(ctx, id, updates); err != nil {
		if errors.Is(err, postgres.ErrFieldsNotAllowedToUpdate) {
			return err
		}
		s.logger.Sugar().Errorf("failed to update cached user(%s): %s", id.String(), err.Error())
		return ErrInternal
	}

	if err := s.repo.Redis.Default.Del(ctx, redisrepo.UserCacheKey(id.String())).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete cached user(%s) from redis: %s", id.String(), err.Error())
	}
	// author names are baked into cached threads
	if err := s.repo.Redis.Default.DelPattern(ctx, redisrepo.CommentsPattern("*", "*")); err != nil {
		s.logger.Sugar().Errorf("failed to invalidate comment threads after user(%s) update: %s", id.String(), err.Error())
	}

	return nil
}

func (s *userCacheService) FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error) {
	key := redisrepo.UserCacheKey(id.String())
	cachedUser, err := redisrepo.Get[model.CachedUser](s.repo.Redis.Default, ctx, key)
	if err == nil && cachedUser != nil {
		return cachedUser, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get cached user(%s) from redis: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	user, err := s.repo.Postgres.UserCache.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		s.logger.Sugar().Errorf("failed to get cached user(%s) from postgres: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, user, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set user(%s) in redis: %s", id.String(), err.Error())
	}

	return user, nil
}

// ConsumeUserUpdates applies profile changes published by the auth provider
// until ctx is done or the delivery channel closes.
func (s *userCacheService) ConsumeUserUpdates(ctx context.Context) {
	queue := rabbitmq.USER_INFO_UPDATED_QUEUE
	msgs, err := s.mq.Consume(queue)
	if err != nil {
		s.logger.Sugar().Errorf("failed to start consume updates from queue(%s): %s", queue, err.Error())
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			s.handleUserUpdate(ctx, queue, msg.Body, msg.Ack, msg.Nack)
		}
	}
}

func (s *userCacheService) handleUserUpdate(ctx context.Context, queue string, body []byte, ack func(bool) error, nack func(bool, bool) error) {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		s.logger.Sugar().Errorf("failed to unmarshal json in queue(%s): %s", queue, err.Error())
		nack(false, false)
		return
	}

	userIDString, exists := data["user_id"].(string)
	if !exists {
		s.logger.Sugar().Errorf("'user_id' field is not provided in queue(%s)", queue)
		nack(false, false)
		return
	}
	userID, err := uuid.Parse(userIDString)
	if err != nil {
		s.logger.Sugar().Errorf("provided an invalid user_id(%s) in queue(%s)", userIDString, queue)
		nack(false, false)
		return
	}

	delete(data, "user_id")

	if err := s.Update(ctx, userID, data); err != nil {
		// a payload with unknown fields never becomes valid, so it is not requeued
		nack(false, !errors.Is(err, postgres.ErrFieldsNotAllowedToUpdate))
		return
	}

	ack(false)
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/rabbitmq"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/LearnHub/course-service/internal/repository/postgres"
	"go.uber.org/zap"
)

type newsletterService struct {
	logger *zap.Logger
	repo   *repository.Repository
	mq     Broker
}

func newNewsletterService(logger *zap.Logger, repo *repository.Repository, mq Broker) Newsletter {
	return &newsletterService{
		logger: logger,
		repo:   repo,
		mq:     mq,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Subscribe only notifies listeners when the address was not already active.
func (s *newsletterService) Subscribe(ctx context.Context, email string) (*model.Subscriber, error) {
	email = normalizeEmail(email)

	subscriber, created, err := s.repo.Postgres.Subscriber.Subscribe(ctx, email)
	if err != nil {
		s.logger.Sugar().Errorf("failed to subscribe email(%s) to newsletter: %s", email, err.Error())
		return nil, ErrInternal
	}

	if created {
		publishAsync(s.logger, s.mq, rabbitmq.NEWSLETTER_SUBSCRIBED_QUEUE, dto.MQNewsletterSubscribedMsg{
			Email:        subscriber.Email,
			SubscribedAt: subscriber.SubscribedAt,
		})
	}

	return subscriber, nil
}

func (s *newsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	if err := s.repo.Postgres.Subscriber.Unsubscribe(ctx, email); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrSubscriberNotFound
		}
		s.logger.Sugar().Errorf("failed to unsubscribe email(%s) from newsletter: %s", email, err.Error())
		return ErrInternal
	}

	return nil
}

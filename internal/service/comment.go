package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/rabbitmq"
	"github.com/LearnHub/course-service/internal/reaction"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/LearnHub/course-service/internal/repository/postgres"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type commentService struct {
	logger *zap.Logger
	repo   *repository.Repository
	mq     Broker
}

func newCommentService(logger *zap.Logger, repo *repository.Repository, mq Broker) Comment {
	return &commentService{
		logger: logger,
		repo:   repo,
		mq:     mq,
	}
}

func (s *commentService) Create(ctx context.Context, author model.CachedUser, input dto.CreateCommentRequest) (*model.CommentRow, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	subjectType := model.SubjectType(input.SubjectType)
	if err := s.ensureSubject(ctx, subjectType, input.SubjectID); err != nil {
		return nil, err
	}

	row := model.CommentRow{
		SubjectType: subjectType,
		SubjectID:   input.SubjectID,
		AuthorID:    author.ID,
		Content:     content,
	}

	if input.ParentID != nil {
		parent, err := s.findRow(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.SubjectType != subjectType || parent.SubjectID != input.SubjectID {
			return nil, ErrParentMismatch
		}

		// replies are one level deep: answering a reply answers its comment
		rootID := parent.ID
		if parent.ParentID != nil {
			rootID = *parent.ParentID
		}
		row.ParentID = &rootID
	}

	created, err := s.repo.Postgres.Comment.Create(ctx, row)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) comment on %s(%s): %s", author.ID.String(), subjectType, input.SubjectID.String(), err.Error())
		return nil, ErrInternal
	}
	created.AuthorName = author.Name()

	countKey := redisrepo.CommentsCountKey(string(subjectType), input.SubjectID.String())
	if err := s.repo.Redis.Default.IncrByIfExists(ctx, countKey, 1); err != nil {
		s.logger.Sugar().Errorf("failed to increment comments count(%s) in redis: %s", countKey, err.Error())
	}
	s.invalidateThreads(ctx, subjectType, input.SubjectID)

	queue := rabbitmq.COMMENT_SUBMITTED_QUEUE
	if created.ParentID != nil {
		queue = rabbitmq.REPLY_SUBMITTED_QUEUE
	}
	publishAsync(s.logger, s.mq, queue, dto.MQCommentSubmittedMsg{
		CommentID:   created.ID,
		ParentID:    created.ParentID,
		SubjectType: string(created.SubjectType),
		SubjectID:   created.SubjectID,
		AuthorID:    created.AuthorID,
		Content:     created.Content,
		CreatedAt:   created.CreatedAt,
	})

	return created, nil
}

func (s *commentService) ensureSubject(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) error {
	var err error
	switch subjectType {
	case model.SubjectCourse:
		_, err = s.repo.Postgres.Course.FindByID(ctx, subjectID)
	case model.SubjectPost:
		_, err = s.repo.Postgres.Post.FindByID(ctx, subjectID)
	default:
		return ErrInvalidSubjectType
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubjectNotFound
		}
		s.logger.Sugar().Errorf("failed to find %s(%s) from postgres: %s", subjectType, subjectID.String(), err.Error())
		return ErrInternal
	}
	return nil
}

func (s *commentService) findRow(ctx context.Context, id uuid.UUID) (*model.CommentRow, error) {
	row, err := s.repo.Postgres.Comment.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		s.logger.Sugar().Errorf("failed to find comment(%s) from postgres: %s", id.String(), err.Error())
		return nil, ErrInternal
	}
	return row, nil
}

func (s *commentService) invalidateThreads(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) {
	pattern := redisrepo.CommentsPattern(string(subjectType), subjectID.String())
	if err := s.repo.Redis.Default.DelPattern(ctx, pattern); err != nil {
		s.logger.Sugar().Errorf("failed to invalidate comment threads(%s) in redis: %s", pattern, err.Error())
	}
}

// FindSubjectComments returns threads newest first, replies oldest first.
// The cached threads are viewer independent; UserReaction is filled per call.
func (s *commentService) FindSubjectComments(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID, viewerID uuid.UUID, limit int, offset int) ([]*model.Comment, error) {
	if !subjectType.Valid() {
		return nil, ErrInvalidSubjectType
	}
	maxLimit(&limit)
	if offset < 0 {
		offset = 0
	}

	key := redisrepo.CommentsKey(string(subjectType), subjectID.String(), limit, offset)
	threads, err := redisrepo.GetMany[model.Comment](s.repo.Redis.Default, ctx, key)
	if err != nil {
		if err != redis.Nil {
			s.logger.Sugar().Errorf("failed to get comments(%s) from redis: %s", key, err.Error())
			return nil, ErrInternal
		}

		threads, err = s.loadThreads(ctx, subjectType, subjectID, limit, offset)
		if err != nil {
			return nil, err
		}

		if err := s.repo.Redis.Default.SetJSON(ctx, key, threads, cacheTTL()); err != nil {
			s.logger.Sugar().Errorf("failed to set comments(%s) in redis: %s", key, err.Error())
		}
	}

	threads = nonNil(threads)
	for _, comment := range threads {
		comment.UserReaction = reaction.UserReaction(comment.Reactions, viewerID)
		for i := range comment.Replies {
			comment.Replies[i].UserReaction = reaction.UserReaction(comment.Replies[i].Reactions, viewerID)
		}
	}

	return threads, nil
}

func (s *commentService) loadThreads(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID, limit int, offset int) ([]*model.Comment, error) {
	rows, err := s.repo.Postgres.Comment.FindSubjectComments(ctx, subjectType, subjectID, limit, offset)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find %s(%s) comments from postgres: %s", subjectType, subjectID.String(), err.Error())
		return nil, ErrInternal
	}

	commentIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		commentIDs = append(commentIDs, row.ID)
	}

	replies, err := s.repo.Postgres.Comment.FindReplies(ctx, commentIDs)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find replies of %s(%s) comments from postgres: %s", subjectType, subjectID.String(), err.Error())
		return nil, ErrInternal
	}

	targetIDs := commentIDs
	for _, reply := range replies {
		targetIDs = append(targetIDs, reply.ID)
	}

	reactionRows, err := s.repo.Postgres.Reaction.FindByTargets(ctx, targetIDs)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find reactions of %s(%s) comments from postgres: %s", subjectType, subjectID.String(), err.Error())
		return nil, ErrInternal
	}

	return assembleThreads(rows, replies, reaction.GroupRows(reactionRows)), nil
}

func assembleThreads(rows []*model.CommentRow, replies []*model.CommentRow, reactions map[uuid.UUID][]model.Reaction) []*model.Comment {
	threads := make([]*model.Comment, 0, len(rows))
	byID := make(map[uuid.UUID]*model.Comment, len(rows))
	for _, row := range rows {
		comment := &model.Comment{
			ID:          row.ID,
			SubjectType: row.SubjectType,
			SubjectID:   row.SubjectID,
			AuthorID:    row.AuthorID,
			AuthorName:  row.AuthorName,
			Content:     row.Content,
			CreatedAt:   row.CreatedAt,
			Reactions:   reactions[row.ID],
		}
		threads = append(threads, comment)
		byID[row.ID] = comment
	}

	for _, row := range replies {
		if row.ParentID == nil {
			continue
		}
		parent, ok := byID[*row.ParentID]
		if !ok {
			continue
		}
		parent.Replies = append(parent.Replies, model.Reply{
			ID:         row.ID,
			CommentID:  parent.ID,
			AuthorID:   row.AuthorID,
			AuthorName: row.AuthorName,
			Content:    row.Content,
			CreatedAt:  row.CreatedAt,
			Reactions:  reactions[row.ID],
		})
	}

	return threads
}

func (s *commentService) Count(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) (int64, error) {
	if !subjectType.Valid() {
		return 0, ErrInvalidSubjectType
	}

	key := redisrepo.CommentsCountKey(string(subjectType), subjectID.String())
	count, err := s.repo.Redis.Default.Get(ctx, key).Int64()
	if err == nil {
		return count, nil
	}
	if err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get comments count(%s) from redis: %s", key, err.Error())
		return 0, ErrInternal
	}

	count, err = s.repo.Postgres.Comment.CountBySubject(ctx, subjectType, subjectID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to count %s(%s) comments from postgres: %s", subjectType, subjectID.String(), err.Error())
		return 0, ErrInternal
	}

	if err := s.repo.Redis.Default.Set(ctx, key, count, cacheTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set comments count(%s) in redis: %s", key, err.Error())
	}

	return count, nil
}

func (s *commentService) Delete(ctx context.Context, commentID uuid.UUID, authorID uuid.UUID) error {
	row, err := s.findRow(ctx, commentID)
	if err != nil {
		return err
	}

	if err := s.repo.Postgres.Comment.Delete(ctx, commentID, authorID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrCommentNotFound
		}
		s.logger.Sugar().Errorf("failed to delete user(%s) comment(%s): %s", authorID.String(), commentID.String(), err.Error())
		return ErrInternal
	}

	// replies go with their comment, so the counter is rebuilt on next read
	countKey := redisrepo.CommentsCountKey(string(row.SubjectType), row.SubjectID.String())
	if err := s.repo.Redis.Default.Del(ctx, countKey).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete comments count(%s) from redis: %s", countKey, err.Error())
	}
	s.invalidateThreads(ctx, row.SubjectType, row.SubjectID)

	return nil
}

// ToggleReaction applies the reaction toggle to a comment or reply, stores the
// user's resulting reaction and returns the new aggregate.
func (s *commentService) ToggleReaction(ctx context.Context, targetID uuid.UUID, userID uuid.UUID, requested model.ReactionType) (*dto.ReactionSnapshot, error) {
	if requested != model.ReactionNone && !requested.Valid() {
		return nil, ErrUnknownReactionType
	}

	target, err := s.findRow(ctx, targetID)
	if err != nil {
		return nil, err
	}

	var next []model.Reaction
	var current model.ReactionType
	err = s.repo.Postgres.Reaction.Toggle(ctx, targetID, userID, func(rows []model.ReactionRow) (model.ReactionType, error) {
		next = reaction.Toggle(reaction.FromRows(rows), userID, requested)
		current, _ = reaction.Find(next, userID)
		return current, nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		s.logger.Sugar().Errorf("failed to toggle user(%s) reaction on comment(%s): %s", userID.String(), targetID.String(), err.Error())
		return nil, ErrInternal
	}

	s.invalidateThreads(ctx, target.SubjectType, target.SubjectID)

	publishAsync(s.logger, s.mq, rabbitmq.REACTION_SUBMITTED_QUEUE, dto.MQReactionSubmittedMsg{
		TargetID:  targetID,
		UserID:    userID,
		Reaction:  string(current),
		Total:     reaction.Total(next),
		ToggledAt: time.Now(),
	})

	return &dto.ReactionSnapshot{
		TargetID:     targetID,
		Reactions:    next,
		UserReaction: current,
	}, nil
}

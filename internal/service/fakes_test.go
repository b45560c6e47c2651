package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/repository"
	"github.com/LearnHub/course-service/internal/repository/postgres"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errDBDown = errors.New("connection refused")

// store is an in-memory stand-in for the postgres tables.
type store struct {
	mu sync.Mutex

	courses     map[uuid.UUID]*model.Course
	lessons     map[uuid.UUID][]model.Lesson
	trainers    map[uuid.UUID]*model.Trainer
	enrollments []*model.Enrollment
	posts       map[uuid.UUID]*model.FullPost
	views       map[uuid.UUID]int64
	comments    []*model.CommentRow
	reactions   []model.ReactionRow
	subscribers map[string]*model.Subscriber
	users       map[uuid.UUID]*model.CachedUser

	findCommentCalls  int
	failReactionWrite bool
}

func newStore() *store {
	return &store{
		courses:     map[uuid.UUID]*model.Course{},
		lessons:     map[uuid.UUID][]model.Lesson{},
		trainers:    map[uuid.UUID]*model.Trainer{},
		posts:       map[uuid.UUID]*model.FullPost{},
		views:       map[uuid.UUID]int64{},
		subscribers: map[string]*model.Subscriber{},
		users:       map[uuid.UUID]*model.CachedUser{},
	}
}

type fakeCourseRepo struct{ s *store }

func (r fakeCourseRepo) FindAll(ctx context.Context, category string, query string, limit int, offset int) ([]*model.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var courses []*model.Course
	for _, c := range r.s.courses {
		if !c.Published {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(query)) {
			continue
		}
		cp := *c
		courses = append(courses, &cp)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return page(courses, limit, offset), nil
}

func (r fakeCourseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r fakeCourseRepo) FindByTrainer(ctx context.Context, trainerID uuid.UUID) ([]*model.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var courses []*model.Course
	for _, c := range r.s.courses {
		if c.TrainerID == trainerID && c.Published {
			cp := *c
			courses = append(courses, &cp)
		}
	}
	return courses, nil
}

func (r fakeCourseRepo) FindLessons(ctx context.Context, courseID uuid.UUID) ([]model.Lesson, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return append([]model.Lesson(nil), r.s.lessons[courseID]...), nil
}

func (r fakeCourseRepo) Categories(ctx context.Context) ([]*model.CategoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[string]int64{}
	for _, c := range r.s.courses {
		if c.Published {
			counts[c.Category]++
		}
	}
	categories := make([]*model.CategoryCount, 0, len(counts))
	for category, n := range counts {
		categories = append(categories, &model.CategoryCount{Category: category, Courses: n})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Category < categories[j].Category })
	return categories, nil
}

type fakeTrainerRepo struct{ s *store }

func (r fakeTrainerRepo) FindAll(ctx context.Context) ([]*model.Trainer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var trainers []*model.Trainer
	for _, t := range r.s.trainers {
		cp := *t
		trainers = append(trainers, &cp)
	}
	return trainers, nil
}

func (r fakeTrainerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Trainer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.trainers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

type fakeEnrollmentRepo struct{ s *store }

func (r fakeEnrollmentRepo) Create(ctx context.Context, enrollment model.Enrollment) (*model.Enrollment, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID {
			cp := *e
			return &cp, false, nil
		}
	}
	enrollment.ID = uuid.New()
	enrollment.EnrolledAt = time.Now()
	r.s.enrollments = append(r.s.enrollments, &enrollment)
	cp := enrollment
	return &cp, true, nil
}

func (r fakeEnrollmentRepo) FindByUserAndCourse(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			cp := *e
			cp.CompletedLessons = append([]uuid.UUID(nil), e.CompletedLessons...)
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r fakeEnrollmentRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var enrollments []*model.Enrollment
	for _, e := range r.s.enrollments {
		if e.UserID == userID {
			cp := *e
			enrollments = append(enrollments, &cp)
		}
	}
	return enrollments, nil
}

func (r fakeEnrollmentRepo) UpdateProgress(ctx context.Context, enrollment model.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.enrollments {
		if e.ID == enrollment.ID {
			e.CompletedLessons = append([]uuid.UUID(nil), enrollment.CompletedLessons...)
			e.Progress = enrollment.Progress
			e.CompletedAt = enrollment.CompletedAt
			return nil
		}
	}
	return postgres.ErrNotFound
}

func (r fakeEnrollmentRepo) CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, e := range r.s.enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

type fakePostRepo struct{ s *store }

func (r fakePostRepo) FindAll(ctx context.Context, limit int, offset int) ([]*model.FullPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var posts []*model.FullPost
	for _, p := range r.s.posts {
		cp := *p
		posts = append(posts, &cp)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Post.PublishedAt.After(posts[j].Post.PublishedAt) })
	return page(posts, limit, offset), nil
}

func (r fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FullPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r fakePostRepo) SearchByTitle(ctx context.Context, query string, limit int, offset int) ([]*model.FullPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var posts []*model.FullPost
	for _, p := range r.s.posts {
		if strings.Contains(strings.ToLower(p.Post.Title), strings.ToLower(query)) {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	return page(posts, limit, offset), nil
}

func (r fakePostRepo) IncrViews(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.views[id]++
	return nil
}

type fakeCommentRepo struct{ s *store }

func (r fakeCommentRepo) Create(ctx context.Context, comment model.CommentRow) (*model.CommentRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment.ID = uuid.New()
	comment.CreatedAt = time.Now().Add(time.Duration(len(r.s.comments)) * time.Millisecond)
	if u, ok := r.s.users[comment.AuthorID]; ok {
		comment.AuthorName = u.Name()
	}
	r.s.comments = append(r.s.comments, &comment)
	cp := comment
	return &cp, nil
}

func (r fakeCommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CommentRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.comments {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r fakeCommentRepo) FindSubjectComments(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID, limit int, offset int) ([]*model.CommentRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.findCommentCalls++
	var rows []*model.CommentRow
	for i := len(r.s.comments) - 1; i >= 0; i-- {
		c := r.s.comments[i]
		if c.ParentID == nil && c.SubjectType == subjectType && c.SubjectID == subjectID {
			cp := *c
			rows = append(rows, &cp)
		}
	}
	return page(rows, limit, offset), nil
}

func (r fakeCommentRepo) FindReplies(ctx context.Context, parentIDs []uuid.UUID) ([]*model.CommentRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	parents := map[uuid.UUID]bool{}
	for _, id := range parentIDs {
		parents[id] = true
	}
	var rows []*model.CommentRow
	for _, c := range r.s.comments {
		if c.ParentID != nil && parents[*c.ParentID] {
			cp := *c
			rows = append(rows, &cp)
		}
	}
	return rows, nil
}

func (r fakeCommentRepo) CountBySubject(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, c := range r.s.comments {
		if c.SubjectType == subjectType && c.SubjectID == subjectID {
			n++
		}
	}
	return n, nil
}

func (r fakeCommentRepo) Delete(ctx context.Context, id uuid.UUID, authorID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	found := false
	kept := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.ID == id && c.AuthorID == authorID {
			found = true
			continue
		}
		if c.ParentID != nil && *c.ParentID == id {
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return postgres.ErrNotFound
	}
	r.s.comments = kept
	return nil
}

type fakeReactionRepo struct{ s *store }

func (r fakeReactionRepo) FindByTargets(ctx context.Context, targetIDs []uuid.UUID) ([]model.ReactionRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	targets := map[uuid.UUID]bool{}
	for _, id := range targetIDs {
		targets[id] = true
	}
	var rows []model.ReactionRow
	for _, row := range r.s.reactions {
		if targets[row.TargetID] {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Toggle holds the store lock for the whole read-decide-write cycle, like the
// row lock taken by the postgres repository.
func (r fakeReactionRepo) Toggle(ctx context.Context, targetID uuid.UUID, userID uuid.UUID, decide postgres.ReactionDecider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	found := false
	for _, c := range r.s.comments {
		if c.ID == targetID {
			found = true
			break
		}
	}
	if !found {
		return pgx.ErrNoRows
	}

	var current []model.ReactionRow
	for _, row := range r.s.reactions {
		if row.TargetID == targetID {
			current = append(current, row)
		}
	}

	next, err := decide(current)
	if err != nil {
		return err
	}
	if r.s.failReactionWrite {
		return errDBDown
	}

	for i, row := range r.s.reactions {
		if row.TargetID == targetID && row.UserID == userID {
			if row.Type == next {
				return nil
			}
			// a changed reaction moves to the end, like a fresh created_at
			r.s.reactions = append(r.s.reactions[:i], r.s.reactions[i+1:]...)
			break
		}
	}
	if next != model.ReactionNone {
		r.s.reactions = append(r.s.reactions, model.ReactionRow{TargetID: targetID, UserID: userID, Type: next})
	}
	return nil
}

type fakeSubscriberRepo struct{ s *store }

func (r fakeSubscriberRepo) Subscribe(ctx context.Context, email string) (*model.Subscriber, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sub, ok := r.s.subscribers[email]; ok {
		wasActive := sub.UnsubscribedAt == nil
		sub.UnsubscribedAt = nil
		cp := *sub
		return &cp, !wasActive, nil
	}
	sub := &model.Subscriber{ID: uuid.New(), Email: email, SubscribedAt: time.Now()}
	r.s.subscribers[email] = sub
	cp := *sub
	return &cp, true, nil
}

func (r fakeSubscriberRepo) Unsubscribe(ctx context.Context, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub, ok := r.s.subscribers[email]
	if !ok || sub.UnsubscribedAt != nil {
		return postgres.ErrNotFound
	}
	now := time.Now()
	sub.UnsubscribedAt = &now
	return nil
}

type fakeUserCacheRepo struct{ s *store }

func (r fakeUserCacheRepo) Create(ctx context.Context, cachedUser model.CachedUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.users[cachedUser.ID] = &cachedUser
	return nil
}

func (r fakeUserCacheRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	for field, value := range updates {
		v, _ := value.(string)
		switch field {
		case "username":
			u.Username = v
		case "display_name":
			u.DisplayName = v
		case "avatar_url":
			u.AvatarURL = v
		case "email":
			u.Email = v
		default:
			return postgres.ErrFieldsNotAllowedToUpdate
		}
	}
	return nil
}

func (r fakeUserCacheRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func page[T any](items []*T, limit int, offset int) []*T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

type published struct {
	queue string
	body  []byte
}

type fakeBroker struct {
	mu         sync.Mutex
	published  []published
	deliveries chan amqp.Delivery
	failWith   error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{deliveries: make(chan amqp.Delivery, 8)}
}

func (b *fakeBroker) Publish(ctx context.Context, queue string, body interface{}) error {
	if b.failWith != nil {
		return b.failWith
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, published{queue: queue, body: data})
	return nil
}

func (b *fakeBroker) Consume(queue string) (<-chan amqp.Delivery, error) {
	return b.deliveries, nil
}

func (b *fakeBroker) messages(queue string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	var bodies [][]byte
	for _, p := range b.published {
		if p.queue == queue {
			bodies = append(bodies, p.body)
		}
	}
	return bodies
}

type testEnv struct {
	store  *store
	mq     *fakeBroker
	mr     *miniredis.Miniredis
	repo   *repository.Repository
	logger *zap.Logger
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	s := newStore()
	repo := &repository.Repository{
		Postgres: &postgres.PostgresRepository{
			Course:     fakeCourseRepo{s},
			Trainer:    fakeTrainerRepo{s},
			Enrollment: fakeEnrollmentRepo{s},
			Post:       fakePostRepo{s},
			Comment:    fakeCommentRepo{s},
			Reaction:   fakeReactionRepo{s},
			Subscriber: fakeSubscriberRepo{s},
			UserCache:  fakeUserCacheRepo{s},
		},
		Redis: redisrepo.New(rdb),
	}

	return &testEnv{
		store:  s,
		mq:     newFakeBroker(),
		mr:     mr,
		repo:   repo,
		logger: zap.NewNop(),
	}
}

func (e *testEnv) addCourse(title string, category string, lessons int) *model.Course {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	trainer := &model.Trainer{ID: uuid.New(), Name: "Ada Trainer"}
	e.store.trainers[trainer.ID] = trainer

	course := &model.Course{
		ID:        uuid.New(),
		TrainerID: trainer.ID,
		Title:     title,
		Category:  category,
		Published: true,
	}
	e.store.courses[course.ID] = course
	for i := 0; i < lessons; i++ {
		e.store.lessons[course.ID] = append(e.store.lessons[course.ID], model.Lesson{
			ID:       uuid.New(),
			CourseID: course.ID,
			Position: i + 1,
		})
	}
	return course
}

func (e *testEnv) addPost(title string) *model.FullPost {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	post := &model.FullPost{
		Post: model.Post{ID: uuid.New(), AuthorID: uuid.New(), Title: title, PublishedAt: time.Now()},
		Tags: []string{"go"},
	}
	e.store.posts[post.Post.ID] = post
	return post
}

func (e *testEnv) addUser(name string) model.CachedUser {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	user := model.CachedUser{ID: uuid.New(), Username: name}
	e.store.users[user.ID] = &user
	return user
}

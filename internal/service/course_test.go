package service

import (
	"testing"

	"github.com/LearnHub/course-service/internal/dto"
	"github.com/LearnHub/course-service/internal/model"
	"github.com/LearnHub/course-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseFindAll(t *testing.T) {
	t.Parallel()
	env := setupTest(t)
	svc := newCourseService(env.logger, env.repo)
	ctx := t.Context()

	env.addCourse("Go basics", "backend", 1)
	env.addCourse("Go concurrency", "backend", 1)
	env.addCourse("Figma", "design", 1)

	tests := []struct {
		name  string
		input dto.GetCoursesRequest
		want  []string
	}{
		{name: "all", input: dto.GetCoursesRequest{}, want: []string{"Figma", "Go basics", "Go concurrency"}},
		{name: "category", input: dto.GetCoursesRequest{Category: "backend"}, want: []string{"Go basics", "Go concurrency"}},
		{name: "query", input: dto.GetCoursesRequest{Query: "concurrency"}, want: []string{"Go concurrency"}},
		{name: "paged", input: dto.GetCoursesRequest{Limit: 1, Offset: 1}, want: []string{"Go basics"}},
		{name: "nothing", input: dto.GetCoursesRequest{Category: "music"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := svc.FindAll(ctx, tt.input)
			require.NoError(t, err)

			titles := make([]string, 0, len(courses))
			for _, c := range courses {
				titles = append(titles, c.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	assert.True(t, env.mr.Exists(redisrepo.CoursesKey("backend", "", DEFAULT_LIMIT, 0)))
}

func TestCourseFindByID(t *testing.T) {
	t.Parallel()
	env := setupTest(t)
	svc := newCourseService(env.logger, env.repo)
	enrollments := newEnrollmentService(env.logger, env.repo, env.mq)
	ctx := t.Context()

	course := env.addCourse("Go basics", "backend", 3)
	_, err := enrollments.Enroll(ctx, uuid.New(), course.ID)
	require.NoError(t, err)

	full, err := svc.FindByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, full.Course.ID)
	assert.Len(t, full.Lessons, 3)
	require.NotNil(t, full.Trainer)
	assert.Equal(t, course.TrainerID, full.Trainer.ID)
	assert.Equal(t, int64(1), full.Students)

	cached, err := redisrepo.Get[model.FullCourse](env.repo.Redis.Default, ctx, redisrepo.CourseKey(course.ID.String()))
	require.NoError(t, err)
	assert.Equal(t, "Go basics", cached.Course.Title)

	t.Run("enrollment drops the cached detail", func(t *testing.T) {
		_, err := enrollments.Enroll(ctx, uuid.New(), course.ID)
		require.NoError(t, err)

		full, err := svc.FindByID(ctx, course.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), full.Students)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestCourseCategories(t *testing.T) {
	t.Parallel()
	env := setupTest(t)
	svc := newCourseService(env.logger, env.repo)
	ctx := t.Context()

	env.addCourse("Go basics", "backend", 1)
	env.addCourse("Go concurrency", "backend", 1)
	env.addCourse("Figma", "design", 1)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*model.CategoryCount{
		{Category: "backend", Courses: 2},
		{Category: "design", Courses: 1},
	}, categories)

	env.addCourse("Rust", "backend", 1)
	categories, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), categories[0].Courses)
}

func TestTrainerProfile(t *testing.T) {
	t.Parallel()
	env := setupTest(t)
	svc := newTrainerService(env.logger, env.repo)
	ctx := t.Context()

	course := env.addCourse("Go basics", "backend", 1)

	trainers, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, trainers, 1)

	profile, err := svc.FindByID(ctx, course.TrainerID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Trainer", profile.Trainer.Name)
	require.Len(t, profile.Courses, 1)
	assert.Equal(t, course.ID, profile.Courses[0].ID)
	assert.True(t, env.mr.Exists(redisrepo.TrainerKey(course.TrainerID.String())))

	_, err = svc.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTrainerNotFound)
}

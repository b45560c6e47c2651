package postgres

import (
	"context"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `c.id, c.trainer_id, c.slug, c.title, c.summary, c.description, c.category, c.level, c.price_cents, c.cover_url, c.published, c.created_at, c.updated_at`

type courseRepo struct {
	db *pgxpool.Pool
}

func newCourseRepo(db *pgxpool.Pool) Course {
	return &courseRepo{
		db: db,
	}
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var course model.Course
	if err := row.Scan(
		&course.ID,
		&course.TrainerID,
		&course.Slug,
		&course.Title,
		&course.Summary,
		&course.Description,
		&course.Category,
		&course.Level,
		&course.PriceCents,
		&course.CoverURL,
		&course.Published,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}

func collectCourses(rows pgx.Rows) ([]*model.Course, error) {
	defer rows.Close()

	courses := make([]*model.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepo) FindAll(ctx context.Context, category string, query string, limit int, offset int) ([]*model.Course, error) {
	maxLimit(&limit)

	rows, err := r.db.Query(
		ctx,
		`SELECT `+courseColumns+`
		FROM courses c
		WHERE c.published
		AND ($1 = '' OR c.category = $1)
		AND ($2 = '' OR c.title ILIKE '%' || $2 || '%')
		ORDER BY c.created_at DESC
		LIMIT $3
		OFFSET $4`,
		category,
		query,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}

	return collectCourses(rows)
}

func (r *courseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return scanCourse(r.db.QueryRow(
		ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.id = $1 AND c.published`,
		id,
	))
}

func (r *courseRepo) FindByTrainer(ctx context.Context, trainerID uuid.UUID) ([]*model.Course, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+courseColumns+`
		FROM courses c
		WHERE c.trainer_id = $1 AND c.published
		ORDER BY c.created_at DESC`,
		trainerID,
	)
	if err != nil {
		return nil, err
	}

	return collectCourses(rows)
}

func (r *courseRepo) FindLessons(ctx context.Context, courseID uuid.UUID) ([]model.Lesson, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT l.id, l.course_id, l.position, l.title, l.duration_minutes, l.preview
		FROM lessons l
		WHERE l.course_id = $1
		ORDER BY l.position`,
		courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := make([]model.Lesson, 0)
	for rows.Next() {
		var lesson model.Lesson
		if err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.Position,
			&lesson.Title,
			&lesson.DurationMinutes,
			&lesson.Preview,
		); err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lessons, nil
}

func (r *courseRepo) Categories(ctx context.Context) ([]*model.CategoryCount, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT c.category, COUNT(*)
		FROM courses c
		WHERE c.published
		GROUP BY c.category
		ORDER BY COUNT(*) DESC, c.category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*model.CategoryCount, 0)
	for rows.Next() {
		var category model.CategoryCount
		if err := rows.Scan(&category.Category, &category.Courses); err != nil {
			return nil, err
		}
		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const enrollmentColumns = `e.id, e.user_id, e.course_id, e.completed_lessons, e.progress, e.enrolled_at, e.completed_at`

type enrollmentRepo struct {
	db *pgxpool.Pool
}

func newEnrollmentRepo(db *pgxpool.Pool) Enrollment {
	return &enrollmentRepo{
		db: db,
	}
}

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := row.Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&enrollment.CompletedLessons,
		&enrollment.Progress,
		&enrollment.EnrolledAt,
		&enrollment.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create inserts the enrollment unless the user is already enrolled, in which
// case the stored one is returned with created == false.
func (r *enrollmentRepo) Create(ctx context.Context, enrollment model.Enrollment) (*model.Enrollment, bool, error) {
	enrollment.ID = uuid.New()
	enrollment.EnrolledAt = time.Now()
	enrollment.Progress = 0
	if enrollment.CompletedLessons == nil {
		enrollment.CompletedLessons = []uuid.UUID{}
	}

	tag, err := r.db.Exec(
		ctx,
		`INSERT INTO enrollments(id, user_id, course_id, completed_lessons, progress, enrolled_at)
		VALUES($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, course_id) DO NOTHING`,
		enrollment.ID,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.CompletedLessons,
		enrollment.Progress,
		enrollment.EnrolledAt,
	)
	if err != nil {
		return nil, false, err
	}

	if tag.RowsAffected() == 1 {
		return &enrollment, true, nil
	}

	existing, err := r.FindByUserAndCourse(ctx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

func (r *enrollmentRepo) FindByUserAndCourse(ctx context.Context, userID uuid.UUID, courseID uuid.UUID) (*model.Enrollment, error) {
	return scanEnrollment(r.db.QueryRow(
		ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments e WHERE e.user_id = $1 AND e.course_id = $2`,
		userID,
		courseID,
	))
}

func (r *enrollmentRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Enrollment, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments e WHERE e.user_id = $1 ORDER BY e.enrolled_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]*model.Enrollment, 0)
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepo) UpdateProgress(ctx context.Context, enrollment model.Enrollment) error {
	tag, err := r.db.Exec(
		ctx,
		"UPDATE enrollments SET completed_lessons = $1, progress = $2, completed_at = $3 WHERE id = $4",
		enrollment.CompletedLessons,
		enrollment.Progress,
		enrollment.CompletedAt,
		enrollment.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *enrollmentRepo) CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM enrollments WHERE course_id = $1", courseID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

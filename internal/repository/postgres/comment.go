package postgres

import (
	"context"
	"time"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentSelect = `SELECT
	c.id, c.parent_id, c.subject_type, c.subject_id, c.author_id, COALESCE(NULLIF(u.display_name, ''), u.username, ''), c.content, c.created_at
	FROM comments c
	LEFT JOIN cached_users u ON c.author_id = u.id`

type commentRepo struct {
	db *pgxpool.Pool
}

func newCommentRepo(db *pgxpool.Pool) Comment {
	return &commentRepo{
		db: db,
	}
}

func scanComment(row pgx.Row) (*model.CommentRow, error) {
	var comment model.CommentRow
	if err := row.Scan(
		&comment.ID,
		&comment.ParentID,
		&comment.SubjectType,
		&comment.SubjectID,
		&comment.AuthorID,
		&comment.AuthorName,
		&comment.Content,
		&comment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

func collectComments(rows pgx.Rows) ([]*model.CommentRow, error) {
	defer rows.Close()

	comments := make([]*model.CommentRow, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *commentRepo) Create(ctx context.Context, comment model.CommentRow) (*model.CommentRow, error) {
	comment.ID = uuid.New()
	comment.CreatedAt = time.Now()
	if _, err := r.db.Exec(
		ctx,
		"INSERT INTO comments(id, parent_id, subject_type, subject_id, author_id, content, created_at) VALUES($1, $2, $3, $4, $5, $6, $7)",
		comment.ID,
		comment.ParentID,
		comment.SubjectType,
		comment.SubjectID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &comment, nil
}

func (r *commentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CommentRow, error) {
	return scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
}

func (r *commentRepo) FindSubjectComments(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID, limit int, offset int) ([]*model.CommentRow, error) {
	maxLimit(&limit)

	rows, err := r.db.Query(
		ctx,
		commentSelect+`
		WHERE c.subject_type = $1 AND c.subject_id = $2 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC
		LIMIT $3
		OFFSET $4`,
		subjectType,
		subjectID,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}

	return collectComments(rows)
}

// FindReplies returns the replies of every comment in parentIDs, oldest first.
func (r *commentRepo) FindReplies(ctx context.Context, parentIDs []uuid.UUID) ([]*model.CommentRow, error) {
	if len(parentIDs) == 0 {
		return []*model.CommentRow{}, nil
	}

	rows, err := r.db.Query(
		ctx,
		commentSelect+` WHERE c.parent_id = ANY($1) ORDER BY c.created_at ASC`,
		parentIDs,
	)
	if err != nil {
		return nil, err
	}

	return collectComments(rows)
}

func (r *commentRepo) CountBySubject(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM comments WHERE subject_type = $1 AND subject_id = $2",
		subjectType,
		subjectID,
	).Scan(&count)
	return count, err
}

func (r *commentRepo) Delete(ctx context.Context, id uuid.UUID, authorID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM comments WHERE id = $1 AND author_id = $2", id, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

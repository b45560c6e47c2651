package postgres

import (
	"context"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postSelect = `SELECT
	p.id, p.author_id, p.title, p.summary, p.content, p.cover_url, p.views, p.published_at, p.updated_at,
	u.username, NULLIF(u.display_name, ''), NULLIF(u.avatar_url, ''),
	COALESCE(array_agg(t.tag ORDER BY t.tag) FILTER (WHERE t.tag IS NOT NULL), '{}')
	FROM posts p
	LEFT JOIN cached_users u ON p.author_id = u.id
	LEFT JOIN post_tags t ON p.id = t.post_id`

const postGroupBy = ` GROUP BY p.id, u.username, u.display_name, u.avatar_url`

type postRepo struct {
	db *pgxpool.Pool
}

func newPostRepo(db *pgxpool.Pool) Post {
	return &postRepo{
		db: db,
	}
}

func scanPost(row pgx.Row) (*model.FullPost, error) {
	var (
		post     model.FullPost
		username *string
	)
	if err := row.Scan(
		&post.Post.ID,
		&post.Post.AuthorID,
		&post.Post.Title,
		&post.Post.Summary,
		&post.Post.Content,
		&post.Post.CoverURL,
		&post.Post.Views,
		&post.Post.PublishedAt,
		&post.Post.UpdatedAt,
		&username,
		&post.Author.DisplayName,
		&post.Author.AvatarURL,
		&post.Tags,
	); err != nil {
		return nil, err
	}

	if username != nil {
		post.Author.Username = *username
	}

	return &post, nil
}

func collectPosts(rows pgx.Rows) ([]*model.FullPost, error) {
	defer rows.Close()

	posts := make([]*model.FullPost, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepo) FindAll(ctx context.Context, limit int, offset int) ([]*model.FullPost, error) {
	maxLimit(&limit)

	rows, err := r.db.Query(
		ctx,
		postSelect+postGroupBy+` ORDER BY p.published_at DESC LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}

	return collectPosts(rows)
}

func (r *postRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FullPost, error) {
	return scanPost(r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`+postGroupBy, id))
}

func (r *postRepo) SearchByTitle(ctx context.Context, query string, limit int, offset int) ([]*model.FullPost, error) {
	maxLimit(&limit)

	rows, err := r.db.Query(
		ctx,
		postSelect+` WHERE p.title ILIKE '%' || $1 || '%'`+postGroupBy+` ORDER BY p.published_at DESC LIMIT $2 OFFSET $3`,
		query,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}

	return collectPosts(rows)
}

func (r *postRepo) IncrViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, "UPDATE posts SET views = views + 1 WHERE id = $1", id)
	return err
}

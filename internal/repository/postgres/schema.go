package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS cached_users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trainers (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	socials TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS courses (
	id UUID PRIMARY KEY,
	trainer_id UUID NOT NULL REFERENCES trainers(id) ON DELETE RESTRICT,
	slug TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	level TEXT NOT NULL DEFAULT 'beginner',
	price_cents BIGINT NOT NULL DEFAULT 0,
	cover_url TEXT NOT NULL DEFAULT '',
	published BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lessons (
	id UUID PRIMARY KEY,
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	position INT NOT NULL,
	title TEXT NOT NULL,
	duration_minutes INT NOT NULL DEFAULT 0,
	preview BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (course_id, position)
);

CREATE TABLE IF NOT EXISTS enrollments (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	completed_lessons UUID[] NOT NULL DEFAULT '{}',
	progress INT NOT NULL DEFAULT 0,
	enrolled_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	UNIQUE (user_id, course_id)
);

CREATE TABLE IF NOT EXISTS posts (
	id UUID PRIMARY KEY,
	author_id UUID NOT NULL,
	title TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	cover_url TEXT NOT NULL DEFAULT '',
	views BIGINT NOT NULL DEFAULT 0,
	published_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS post_tags (
	post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	tag TEXT NOT NULL,
	PRIMARY KEY (post_id, tag)
);

CREATE TABLE IF NOT EXISTS comments (
	id UUID PRIMARY KEY,
	parent_id UUID REFERENCES comments(id) ON DELETE CASCADE,
	subject_type TEXT NOT NULL,
	subject_id UUID NOT NULL,
	author_id UUID NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS comment_reactions (
	target_id UUID NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
	user_id UUID NOT NULL,
	type TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (target_id, user_id)
);

CREATE TABLE IF NOT EXISTS subscribers (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	subscribed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	unsubscribed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_courses_category ON courses(category);
CREATE INDEX IF NOT EXISTS idx_enrollments_user ON enrollments(user_id);
CREATE INDEX IF NOT EXISTS idx_comments_subject ON comments(subject_type, subject_id, created_at);
CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_id);
CREATE INDEX IF NOT EXISTS idx_comment_reactions_created ON comment_reactions(target_id, created_at);
`

// Migrate creates missing tables and indexes. It is safe to run on every start.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}
	return nil
}

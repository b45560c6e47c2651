package postgres

import (
	"context"
	"time"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type subscriberRepo struct {
	db *pgxpool.Pool
}

func newSubscriberRepo(db *pgxpool.Pool) Subscriber {
	return &subscriberRepo{
		db: db,
	}
}

// Subscribe adds email or re-activates an unsubscribed one. created is false
// when the address was already an active subscriber.
func (r *subscriberRepo) Subscribe(ctx context.Context, email string) (*model.Subscriber, bool, error) {
	var (
		subscriber model.Subscriber
		wasActive  bool
	)
	if err := r.db.QueryRow(
		ctx,
		`WITH prev AS (
			SELECT unsubscribed_at IS NULL AS active FROM subscribers WHERE email = $2
		)
		INSERT INTO subscribers(id, email, subscribed_at)
		VALUES($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
			SET subscribed_at = CASE WHEN subscribers.unsubscribed_at IS NULL THEN subscribers.subscribed_at ELSE EXCLUDED.subscribed_at END,
				unsubscribed_at = NULL
		RETURNING id, email, subscribed_at, COALESCE((SELECT active FROM prev), FALSE)`,
		uuid.New(),
		email,
		time.Now(),
	).Scan(
		&subscriber.ID,
		&subscriber.Email,
		&subscriber.SubscribedAt,
		&wasActive,
	); err != nil {
		return nil, false, err
	}

	return &subscriber, !wasActive, nil
}

func (r *subscriberRepo) Unsubscribe(ctx context.Context, email string) error {
	tag, err := r.db.Exec(
		ctx,
		"UPDATE subscribers SET unsubscribed_at = now() WHERE email = $1 AND unsubscribed_at IS NULL",
		email,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reactionRepo struct {
	db *pgxpool.Pool
}

func newReactionRepo(db *pgxpool.Pool) Reaction {
	return &reactionRepo{
		db: db,
	}
}

const reactionsByTargetsQuery = `SELECT r.target_id, r.user_id, r.type
	FROM comment_reactions r
	WHERE r.target_id = ANY($1)
	ORDER BY r.created_at ASC, r.user_id ASC`

// FindByTargets returns rows ordered by when each user picked their current
// reaction, which keeps users in pick order inside a bucket.
func (r *reactionRepo) FindByTargets(ctx context.Context, targetIDs []uuid.UUID) ([]model.ReactionRow, error) {
	if len(targetIDs) == 0 {
		return []model.ReactionRow{}, nil
	}

	rows, err := r.db.Query(ctx, reactionsByTargetsQuery, targetIDs)
	if err != nil {
		return nil, err
	}
	return collectReactionRows(rows)
}

// Toggle locks the target comment, hands its current reactions to decide and
// stores the user's resulting reaction in the same transaction. Concurrent
// toggles on one target are applied one after another.
func (r *reactionRepo) Toggle(ctx context.Context, targetID uuid.UUID, userID uuid.UUID, decide ReactionDecider) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	err = tx.QueryRow(ctx, "SELECT id FROM comments WHERE id = $1 FOR UPDATE", targetID).Scan(&locked)
	if err != nil {
		return err
	}

	rows, err := tx.Query(ctx, reactionsByTargetsQuery, []uuid.UUID{targetID})
	if err != nil {
		return err
	}
	current, err := collectReactionRows(rows)
	if err != nil {
		return err
	}

	next, err := decide(current)
	if err != nil {
		return err
	}

	if next == model.ReactionNone {
		_, err = tx.Exec(ctx, "DELETE FROM comment_reactions WHERE target_id = $1 AND user_id = $2", targetID, userID)
	} else {
		_, err = tx.Exec(
			ctx,
			`INSERT INTO comment_reactions(target_id, user_id, type, created_at)
			VALUES($1, $2, $3, now())
			ON CONFLICT (target_id, user_id) DO UPDATE SET type = EXCLUDED.type, created_at = now()
			WHERE comment_reactions.type <> EXCLUDED.type`,
			targetID,
			userID,
			next,
		)
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func collectReactionRows(rows pgx.Rows) ([]model.ReactionRow, error) {
	defer rows.Close()

	reactions := make([]model.ReactionRow, 0)
	for rows.Next() {
		var row model.ReactionRow
		if err := rows.Scan(&row.TargetID, &row.UserID, &row.Type); err != nil {
			return nil, err
		}
		reactions = append(reactions, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reactions, nil
}

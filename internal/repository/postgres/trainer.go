package postgres

import (
	"context"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type trainerRepo struct {
	db *pgxpool.Pool
}

func newTrainerRepo(db *pgxpool.Pool) Trainer {
	return &trainerRepo{
		db: db,
	}
}

func (r *trainerRepo) FindAll(ctx context.Context) ([]*model.Trainer, error) {
	rows, err := r.db.Query(ctx, "SELECT t.id, t.name, t.title, t.bio, t.avatar_url, t.socials FROM trainers t ORDER BY t.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trainers := make([]*model.Trainer, 0)
	for rows.Next() {
		var trainer model.Trainer
		if err := rows.Scan(
			&trainer.ID,
			&trainer.Name,
			&trainer.Title,
			&trainer.Bio,
			&trainer.AvatarURL,
			&trainer.Socials,
		); err != nil {
			return nil, err
		}
		trainers = append(trainers, &trainer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trainers, nil
}

func (r *trainerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Trainer, error) {
	var trainer model.Trainer
	if err := r.db.QueryRow(
		ctx,
		"SELECT t.id, t.name, t.title, t.bio, t.avatar_url, t.socials FROM trainers t WHERE t.id = $1",
		id,
	).Scan(
		&trainer.ID,
		&trainer.Name,
		&trainer.Title,
		&trainer.Bio,
		&trainer.AvatarURL,
		&trainer.Socials,
	); err != nil {
		return nil, err
	}

	return &trainer, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pet-companion-chat/internal/domain/trainers"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type TrainersRepo struct {
	db *sql.DB
}

func NewTrainersRepo(db *sql.DB) *TrainersRepo {
	return &TrainersRepo{db: db}
}

func (r *TrainersRepo) Create(ctx context.Context, t trainers.Trainer) (trainers.Trainer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return trainers.Trainer{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trainers (id, created_at) VALUES ($1, $2)
	`, t.ID, t.CreatedAt); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return trainers.Trainer{}, trainers.ErrAlreadyExists
		}
		return trainers.Trainer{}, err
	}

	for _, p := range t.Pets {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if err := insertPet(ctx, tx, t.ID, p); err != nil {
			return trainers.Trainer{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return trainers.Trainer{}, err
	}
	return r.Get(ctx, t.ID)
}

func (r *TrainersRepo) Get(ctx context.Context, id string) (trainers.Trainer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return trainers.Trainer{}, trainers.ErrNotFound
	}

	var t trainers.Trainer
	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_at
		FROM trainers
		WHERE id = $1
	`, id)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return trainers.Trainer{}, trainers.ErrNotFound
		}
		return trainers.Trainer{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, name,
			stage, friendship, talking_streak,
			last_chatted, last_evaluated, context
		FROM trainer_pets
		WHERE trainer_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return trainers.Trainer{}, err
	}
	defer rows.Close()

	t.Pets = make([]trainers.Pet, 0)
	for rows.Next() {
		var p trainers.Pet
		var le sql.NullTime
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Stage,
			&p.Friendship,
			&p.TalkingStreak,
			&p.LastChatted,
			&le,
			&p.Context,
		); err != nil {
			return trainers.Trainer{}, err
		}
		if le.Valid {
			v := le.Time
			p.LastEvaluated = &v
		}
		t.Pets = append(t.Pets, p)
	}

	return t, rows.Err()
}

// Delete borra el trainer; las mascotas caen por ON DELETE CASCADE.
func (r *TrainersRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM trainers WHERE id = $1`, id)
	return err
}

func (r *TrainersRepo) AddPet(ctx context.Context, trainerID string, p trainers.Pet) (trainers.Trainer, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := insertPet(ctx, r.db, trainerID, p); err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return trainers.Trainer{}, trainers.ErrNotFound
		}
		return trainers.Trainer{}, err
	}
	return r.Get(ctx, trainerID)
}

func (r *TrainersRepo) UpdatePet(ctx context.Context, trainerID string, p trainers.Pet) (trainers.Trainer, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE trainer_pets
		SET
			name = $3,
			stage = $4,
			friendship = $5,
			talking_streak = $6,
			last_chatted = $7,
			last_evaluated = $8,
			context = $9
		WHERE trainer_id = $1 AND id = $2
	`,
		trainerID,
		p.ID,
		p.Name,
		p.Stage,
		p.Friendship,
		p.TalkingStreak,
		p.LastChatted,
		toNullTime(p),
		p.Context,
	)
	if err != nil {
		return trainers.Trainer{}, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return trainers.Trainer{}, trainers.ErrNotFound
	}
	return r.Get(ctx, trainerID)
}

func (r *TrainersRepo) RemovePet(ctx context.Context, trainerID, petID string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM trainers WHERE id = $1)
	`, trainerID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return trainers.ErrNotFound
	}

	_, err := r.db.ExecContext(ctx, `
		DELETE FROM trainer_pets WHERE trainer_id = $1 AND id = $2
	`, trainerID, petID)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPet(ctx context.Context, db execer, trainerID string, p trainers.Pet) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO trainer_pets (
			id, trainer_id, name,
			stage, friendship, talking_streak,
			last_chatted, last_evaluated, context
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID,
		trainerID,
		p.Name,
		p.Stage,
		p.Friendship,
		p.TalkingStreak,
		p.LastChatted,
		toNullTime(p),
		p.Context,
	)
	return err
}

func toNullTime(p trainers.Pet) sql.NullTime {
	if p.LastEvaluated == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *p.LastEvaluated, Valid: true}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

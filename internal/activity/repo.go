package activity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// Insert is idempotent on the entry id so redelivered events are harmless.
func (r *Repo) Insert(ctx context.Context, e Entry) error {
	const op = "activity.Repo.Insert"
	_, err := r.DB.Exec(ctx, `
		INSERT INTO activity_log(id, action, target_type, target_id, actor, details, at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Action, e.TargetType, e.TargetID, e.Actor, e.Details, e.At)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const op = "activity.Repo.Recent"
	rows, err := r.DB.Query(ctx, `
		SELECT id, action, target_type, target_id, actor, details, at
		FROM activity_log ORDER BY at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.TargetType, &e.TargetID, &e.Actor, &e.Details, &e.At); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

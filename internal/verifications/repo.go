package verifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const requestColumns = `id, type, submitter, documents, risk_score, status, notes, reviewed_by, submitted_at, reviewed_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.Type, &r.Submitter, &r.Documents, &r.RiskScore, &r.Status, &r.Notes, &r.ReviewedBy,
		&r.SubmittedAt, &r.ReviewedAt)
	r.Risk = RiskLevel(r.RiskScore)
	return r, err
}

func (r *Repo) Insert(ctx context.Context, v Request) error {
	const op = "verifications.Repo.Insert"
	_, err := r.DB.Exec(ctx, `
		INSERT INTO verification_requests(`+requestColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		v.ID, v.Type, v.Submitter, v.Documents, v.RiskScore, v.Status, v.Notes, v.ReviewedBy, v.SubmittedAt, v.ReviewedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Request, error) {
	const op = "verifications.Repo.Get"
	v, err := scanRequest(r.DB.QueryRow(ctx, `SELECT `+requestColumns+` FROM verification_requests WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (r *Repo) List(ctx context.Context) ([]Request, error) {
	const op = "verifications.Repo.List"
	rows, err := r.DB.Query(ctx, `SELECT `+requestColumns+` FROM verification_requests ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		v, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, v Request, expected Status) error {
	const op = "verifications.Repo.Update"
	ct, err := r.DB.Exec(ctx, `
		UPDATE verification_requests SET status=$2, notes=$3, reviewed_by=$4, reviewed_at=$5
		WHERE id=$1 AND status=$6`,
		v.ID, v.Status, v.Notes, v.ReviewedBy, v.ReviewedAt, expected)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM verification_requests WHERE id=$1)`, v.ID).Scan(&exists); err != nil {
		return fmt.Errorf("%s: check: %w", op, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const userColumns = `id, username, email, role, status, verified, total_transactions, total_spent_cents,
	total_earned_cents, joined_at, last_active_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.Status, &u.Verified, &u.TotalTransactions,
		&u.TotalSpentCents, &u.TotalEarnedCents, &u.JoinedAt, &u.LastActiveAt)
	return u, err
}

func (r *Repo) Insert(ctx context.Context, u User) error {
	const op = "users.Repo.Insert"
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		u.ID, u.Username, u.Email, u.Role, u.Status, u.Verified, u.TotalTransactions, u.TotalSpentCents,
		u.TotalEarnedCents, u.JoinedAt, u.LastActiveAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrExists
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (User, error) {
	return r.one(ctx, "users.Repo.Get", `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.one(ctx, "users.Repo.GetByUsername", `SELECT `+userColumns+` FROM users WHERE lower(username)=lower($1)`, username)
}

func (r *Repo) one(ctx context.Context, op, sql string, arg string) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r *Repo) List(ctx context.Context) ([]User, error) {
	const op = "users.Repo.List"
	rows, err := r.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY joined_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update writes role, status and verification while the row still has the expected status.
func (r *Repo) Update(ctx context.Context, u User, expected Status) error {
	const op = "users.Repo.Update"
	ct, err := r.DB.Exec(ctx, `
		UPDATE users SET role=$2, status=$3, verified=$4, last_active_at=$5
		WHERE id=$1 AND status=$6`,
		u.ID, u.Role, u.Status, u.Verified, u.LastActiveAt, expected)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, u.ID).Scan(&exists); err != nil {
		return fmt.Errorf("%s: check: %w", op, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

// AddTotals bumps the running counters of one user in a single statement.
func (r *Repo) AddTotals(ctx context.Context, username string, spent, earned int64, at time.Time) error {
	const op = "users.Repo.AddTotals"
	ct, err := r.DB.Exec(ctx, `
		UPDATE users
		SET total_transactions = total_transactions + 1,
		    total_spent_cents = total_spent_cents + $2,
		    total_earned_cents = total_earned_cents + $3,
		    last_active_at = $4
		WHERE lower(username)=lower($1)`, username, spent, earned, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

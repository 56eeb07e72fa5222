package revenue

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const txColumns = `id, type, amount_cents, currency, listing_id, buyer, seller, status, occurred_at`

func scanTx(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Type, &t.AmountCents, &t.Currency, &t.ListingID, &t.Buyer, &t.Seller, &t.Status, &t.OccurredAt)
	return t, err
}

// Insert writes all transactions atomically.
func (r *Repo) Insert(ctx context.Context, txs ...Transaction) error {
	const op = "revenue.Repo.Insert"
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, t := range txs {
		batch.Queue(`INSERT INTO transactions(`+txColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			t.ID, t.Type, t.AmountCents, t.Currency, t.ListingID, t.Buyer, t.Seller, t.Status, t.OccurredAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return tx.Commit(ctx)
}

func (r *Repo) Get(ctx context.Context, id string) (Transaction, error) {
	const op = "revenue.Repo.Get"
	t, err := scanTx(r.DB.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (r *Repo) List(ctx context.Context) ([]Transaction, error) {
	const op = "revenue.Repo.List"
	rows, err := r.DB.Query(ctx, `SELECT `+txColumns+` FROM transactions ORDER BY occurred_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

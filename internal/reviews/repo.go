package reviews

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const reviewColumns = `id, listing_id, seller, reviewer, rating, comment, created_at`

func (r *Repo) Insert(ctx context.Context, rv Review) error {
	const op = "reviews.Repo.Insert"
	_, err := r.DB.Exec(ctx, `INSERT INTO reviews(`+reviewColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rv.ID, rv.ListingID, rv.Seller, rv.Reviewer, rv.Rating, rv.Comment, rv.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Repo) ListBySeller(ctx context.Context, seller string) ([]Review, error) {
	return r.query(ctx, "reviews.Repo.ListBySeller",
		`SELECT `+reviewColumns+` FROM reviews WHERE lower(seller)=lower($1) ORDER BY created_at DESC`, seller)
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]Review, error) {
	return r.query(ctx, "reviews.Repo.Recent",
		`SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *Repo) query(ctx context.Context, op, sql string, args ...any) ([]Review, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.ListingID, &rv.Seller, &rv.Reviewer, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

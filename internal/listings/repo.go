package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const listingColumns = `id, title, description, game, platform, seller, price_cents, images, account_level, rank, region,
	status, flagged, flag_reason, reject_reason, views, created_at, updated_at`

func scanListing(row pgx.Row) (Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Game, &l.Platform, &l.Seller, &l.PriceCents, &l.Images,
		&l.AccountLevel, &l.Rank, &l.Region, &l.Status, &l.Flagged, &l.FlagReason, &l.RejectReason, &l.Views,
		&l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *Repo) Insert(ctx context.Context, l Listing) error {
	const op = "listings.Repo.Insert"
	_, err := r.DB.Exec(ctx, `
		INSERT INTO listings(`+listingColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		l.ID, l.Title, l.Description, l.Game, l.Platform, l.Seller, l.PriceCents, l.Images, l.AccountLevel, l.Rank,
		l.Region, l.Status, l.Flagged, l.FlagReason, l.RejectReason, l.Views, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Listing, error) {
	const op = "listings.Repo.Get"
	l, err := scanListing(r.DB.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

func (r *Repo) List(ctx context.Context) ([]Listing, error) {
	return r.query(ctx, "listings.Repo.List", `SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`)
}

func (r *Repo) ListBySeller(ctx context.Context, seller string) ([]Listing, error) {
	return r.query(ctx, "listings.Repo.ListBySeller",
		`SELECT `+listingColumns+` FROM listings WHERE seller=$1 ORDER BY created_at DESC`, seller)
}

func (r *Repo) query(ctx context.Context, op, sql string, args ...any) ([]Listing, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

var sortClause = map[string]string{
	SortNewest:    "created_at DESC",
	SortPriceAsc:  "price_cents ASC, created_at DESC",
	SortPriceDesc: "price_cents DESC, created_at DESC",
	SortPopular:   "views DESC, created_at DESC",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search runs a public catalogue query. q must already be normalized.
// The total counts every match, not only the returned page.
func (r *Repo) Search(ctx context.Context, q Query) ([]Listing, int, error) {
	const op = "listings.Repo.Search"

	where := []string{"status = 'active'"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.Text != "" {
		p := arg("%" + likeEscaper.Replace(q.Text) + "%")
		where = append(where, fmt.Sprintf(
			`(title ILIKE %[1]s ESCAPE '\' OR description ILIKE %[1]s ESCAPE '\' OR game ILIKE %[1]s ESCAPE '\')`, p))
	}
	if q.Game != "" {
		where = append(where, "lower(game) = lower("+arg(q.Game)+")")
	}
	if q.Platform != "" {
		where = append(where, "lower(platform) = lower("+arg(q.Platform)+")")
	}
	if q.MinPriceCents > 0 {
		where = append(where, "price_cents >= "+arg(q.MinPriceCents))
	}
	if q.MaxPriceCents > 0 {
		where = append(where, "price_cents <= "+arg(q.MaxPriceCents))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM listings WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	order, ok := sortClause[q.Sort]
	if !ok {
		order = sortClause[SortNewest]
	}
	limit := arg(q.PerPage)
	offset := arg((q.Page - 1) * q.PerPage)
	out, err := r.query(ctx, op, `SELECT `+listingColumns+` FROM listings WHERE `+cond+
		` ORDER BY `+order+` LIMIT `+limit+` OFFSET `+offset, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update writes the moderation fields while the row still has the expected status.
func (r *Repo) Update(ctx context.Context, l Listing, expected Status) error {
	const op = "listings.Repo.Update"
	ct, err := r.DB.Exec(ctx, `
		UPDATE listings
		SET status=$2, flagged=$3, flag_reason=$4, reject_reason=$5, updated_at=$6
		WHERE id=$1 AND status=$7`,
		l.ID, l.Status, l.Flagged, l.FlagReason, l.RejectReason, l.UpdatedAt, expected)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM listings WHERE id=$1)`, l.ID).Scan(&exists); err != nil {
		return fmt.Errorf("%s: check: %w", op, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *Repo) IncrementViews(ctx context.Context, id string) (int, error) {
	const op = "listings.Repo.IncrementViews"
	var views int
	err := r.DB.QueryRow(ctx,
		`UPDATE listings SET views = views + 1 WHERE id=$1 AND status='active' RETURNING views`, id).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return views, nil
}

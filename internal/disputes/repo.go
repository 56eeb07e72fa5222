package disputes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const disputeColumns = `id, order_id, listing_id, listing_title, buyer, seller, amount_cents, reason, description,
	status, priority, buyer_evidence, seller_evidence, resolution, resolved_by, created_at, updated_at, resolved_at`

func scanDispute(row pgx.Row) (Dispute, error) {
	var d Dispute
	err := row.Scan(&d.ID, &d.OrderID, &d.ListingID, &d.ListingTitle, &d.Buyer, &d.Seller, &d.AmountCents,
		&d.Reason, &d.Description, &d.Status, &d.Priority, &d.BuyerEvidence, &d.SellerEvidence,
		&d.Resolution, &d.ResolvedBy, &d.CreatedAt, &d.UpdatedAt, &d.ResolvedAt)
	return d, err
}

func (r *Repo) Insert(ctx context.Context, d Dispute) error {
	const op = "disputes.Repo.Insert"
	_, err := r.DB.Exec(ctx, `
		INSERT INTO disputes(`+disputeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		d.ID, d.OrderID, d.ListingID, d.ListingTitle, d.Buyer, d.Seller, d.AmountCents, d.Reason, d.Description,
		d.Status, d.Priority, d.BuyerEvidence, d.SellerEvidence, d.Resolution, d.ResolvedBy, d.CreatedAt, d.UpdatedAt, d.ResolvedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Dispute, error) {
	const op = "disputes.Repo.Get"
	d, err := scanDispute(r.DB.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dispute{}, ErrNotFound
		}
		return Dispute{}, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, dispute_id, sender, sender_role, body, created_at
		FROM dispute_messages WHERE dispute_id=$1 ORDER BY created_at`, id)
	if err != nil {
		return Dispute{}, fmt.Errorf("%s: messages: %w", op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.DisputeID, &m.Sender, &m.SenderRole, &m.Body, &m.CreatedAt); err != nil {
			return Dispute{}, fmt.Errorf("%s: scan message: %w", op, err)
		}
		d.Messages = append(d.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return Dispute{}, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// List returns every dispute, newest first, without message threads.
func (r *Repo) List(ctx context.Context) ([]Dispute, error) {
	const op = "disputes.Repo.List"
	rows, err := r.DB.Query(ctx, `SELECT `+disputeColumns+` FROM disputes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update writes the mutable fields, but only while the row still has the expected status.
func (r *Repo) Update(ctx context.Context, d Dispute, expected Status) error {
	const op = "disputes.Repo.Update"
	ct, err := r.DB.Exec(ctx, `
		UPDATE disputes
		SET status=$2, priority=$3, buyer_evidence=$4, seller_evidence=$5,
		    resolution=$6, resolved_by=$7, updated_at=$8, resolved_at=$9
		WHERE id=$1 AND status=$10`,
		d.ID, d.Status, d.Priority, d.BuyerEvidence, d.SellerEvidence, d.Resolution, d.ResolvedBy, d.UpdatedAt, d.ResolvedAt, expected)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM disputes WHERE id=$1)`, d.ID).Scan(&exists); err != nil {
		return fmt.Errorf("%s: check: %w", op, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

var evidenceColumn = map[Party]string{
	PartyBuyer:  "buyer_evidence",
	PartySeller: "seller_evidence",
}

func (r *Repo) AddEvidence(ctx context.Context, id string, party Party, at time.Time) (Dispute, error) {
	const op = "disputes.Repo.AddEvidence"
	col, ok := evidenceColumn[party]
	if !ok {
		return Dispute{}, fmt.Errorf("%w: unknown party %q", ErrValidation, party)
	}
	d, err := scanDispute(r.DB.QueryRow(ctx, `
		UPDATE disputes SET `+col+` = `+col+` + 1, updated_at=$2
		WHERE id=$1 AND status IN ($3, $4)
		RETURNING `+disputeColumns, id, at, StatusOpen, StatusInvestigating))
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Dispute{}, fmt.Errorf("%s: %w", op, err)
	}

	var status Status
	if err := r.DB.QueryRow(ctx, `SELECT status FROM disputes WHERE id=$1`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dispute{}, ErrNotFound
		}
		return Dispute{}, fmt.Errorf("%s: check: %w", op, err)
	}
	return Dispute{}, fmt.Errorf("%w: dispute is %s", ErrInvalidTransition, status)
}

func (r *Repo) AddMessage(ctx context.Context, m Message) error {
	const op = "disputes.Repo.AddMessage"
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status Status
	if err := tx.QueryRow(ctx, `SELECT status FROM disputes WHERE id=$1 FOR UPDATE`, m.DisputeID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: lock: %w", op, err)
	}
	if status.Terminal() {
		return ErrInvalidTransition
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO dispute_messages(id, dispute_id, sender, sender_role, body, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`, m.ID, m.DisputeID, m.Sender, m.SenderRole, m.Body, m.CreatedAt); err != nil {
		return fmt.Errorf("%s: insert: %w", op, err)
	}
	if _, err := tx.Exec(ctx, `UPDATE disputes SET updated_at=$2 WHERE id=$1`, m.DisputeID, m.CreatedAt); err != nil {
		return fmt.Errorf("%s: touch: %w", op, err)
	}
	return tx.Commit(ctx)
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"scadenze/internal/core"
)

const dateLayout = "2006-01-02"

// Repository wraps the SQLite handle and exposes the queries the
// services need. All dates are stored as ISO-8601 strings.
type Repository struct {
	db *sql.DB
}

func Open(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func parseStoredDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

func formatDate(d core.Date) string {
	return d.Time.Format(dateLayout)
}

func (r *Repository) ListActiveObligations(ctx context.Context) ([]core.RecurringObligation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, direction, frequency,
		       start_date, end_date, anchor_date, active
		FROM obligations
		WHERE active = 1
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query active obligations: %w", err)
	}
	defer rows.Close()

	var obligations []core.RecurringObligation
	for rows.Next() {
		ob, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obligations = append(obligations, ob)
	}
	return obligations, rows.Err()
}

func (r *Repository) GetObligation(ctx context.Context, id int64) (core.RecurringObligation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, description, amount_cents, direction, frequency,
		       start_date, end_date, anchor_date, active
		FROM obligations
		WHERE id = ?`, id)
	ob, err := scanObligation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringObligation{}, core.ErrObligationNotFound
	}
	return ob, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (core.RecurringObligation, error) {
	var (
		ob           core.RecurringObligation
		direction    string
		frequency    string
		startDate    string
		endDate      sql.NullString
		anchorDate   string
		activeAsInt  int
		amountCents  int64
	)
	err := row.Scan(&ob.ID, &ob.Description, &amountCents, &direction, &frequency,
		&startDate, &endDate, &anchorDate, &activeAsInt)
	if err != nil {
		return core.RecurringObligation{}, err
	}
	ob.Amount = core.Money{Cents: amountCents}
	ob.Direction = core.Direction(direction)
	ob.Frequency = core.Frequency(strings.ToLower(frequency))
	ob.Active = activeAsInt != 0
	if ob.StartDate, err = parseStoredDate(startDate); err != nil {
		return core.RecurringObligation{}, err
	}
	if ob.AnchorDate, err = parseStoredDate(anchorDate); err != nil {
		return core.RecurringObligation{}, err
	}
	if endDate.Valid && endDate.String != "" {
		if ob.EndDate, err = parseStoredDate(endDate.String); err != nil {
			return core.RecurringObligation{}, err
		}
	}
	return ob, nil
}

func (r *Repository) GetCardProfile(ctx context.Context, cardID int64) (core.CardBillingProfile, error) {
	var p core.CardBillingProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT id, closing_day, due_day FROM cards WHERE id = ?`, cardID).
		Scan(&p.CardID, &p.ClosingDay, &p.DueDay)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CardBillingProfile{}, core.ErrCardNotFound
	}
	if err != nil {
		return core.CardBillingProfile{}, fmt.Errorf("query card %d: %w", cardID, err)
	}
	return p, nil
}

func (r *Repository) ListCardProfiles(ctx context.Context) ([]core.CardBillingProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, closing_day, due_day FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var profiles []core.CardBillingProfile
	for rows.Next() {
		var p core.CardBillingProfile
		if err := rows.Scan(&p.CardID, &p.ClosingDay, &p.DueDay); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ListCardTransactions returns the card's transactions with dates in
// [from, to], both ends inclusive.
func (r *Repository) ListCardTransactions(ctx context.Context, cardID int64, from, to core.Date) ([]core.CardTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, card_id, tx_date, description, amount_cents
		FROM card_transactions
		WHERE card_id = ? AND tx_date >= ? AND tx_date <= ?
		ORDER BY tx_date, id`, cardID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("query card transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.CardTransaction
	for rows.Next() {
		var (
			tx     core.CardTransaction
			txDate string
			cents  int64
		)
		if err := rows.Scan(&tx.ID, &tx.CardID, &txDate, &tx.Description, &cents); err != nil {
			return nil, err
		}
		tx.Amount = core.Money{Cents: cents}
		if tx.Date, err = parseStoredDate(txDate); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *Repository) ListCardParcels(ctx context.Context, cardID int64) ([]core.Parcel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, card_id, parent_purchase_id, installment_index, total_installments,
		       due_date, amount_cents, paid
		FROM parcels
		WHERE card_id = ?
		ORDER BY due_date, installment_index`, cardID)
	if err != nil {
		return nil, fmt.Errorf("query parcels: %w", err)
	}
	defer rows.Close()

	var parcels []core.Parcel
	for rows.Next() {
		var (
			p       core.Parcel
			dueDate string
			cents   int64
			paidInt int
		)
		if err := rows.Scan(&p.ID, &p.CardID, &p.ParentPurchaseID, &p.InstallmentIndex,
			&p.TotalInstallments, &dueDate, &cents, &paidInt); err != nil {
			return nil, err
		}
		p.Amount = core.Money{Cents: cents}
		p.Paid = paidInt != 0
		if p.DueDate, err = parseStoredDate(dueDate); err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}
	return parcels, rows.Err()
}

func (r *Repository) IsCyclePaid(ctx context.Context, cardID int64, month, year int) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM cycle_payments
		WHERE card_id = ? AND month = ? AND year = ?`, cardID, month, year).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query cycle payment: %w", err)
	}
	return count > 0, nil
}

// RecordCyclePayment inserts the payment record. A second payment for
// the same cycle hits the unique index and reports ErrCycleAlreadyPaid,
// so concurrent pay requests cannot double-record.
func (r *Repository) RecordCyclePayment(ctx context.Context, cardID int64, month, year int, fundingAccountID int64) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO cycle_payments (card_id, month, year, funding_account_id, paid_at)
		VALUES (?, ?, ?, ?, ?)`,
		cardID, month, year, fundingAccountID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record cycle payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record cycle payment: %w", err)
	}
	if affected == 0 {
		return core.ErrCycleAlreadyPaid
	}
	return nil
}

// MarkParcelsPaid settles the card's unpaid parcels falling due in the
// given cycle month. Returns how many parcels were settled.
func (r *Repository) MarkParcelsPaid(ctx context.Context, cardID int64, month, year int) (int64, error) {
	first := core.NewDate(year, month, 1)
	last := core.NewDate(year, month, core.DaysInMonth(year, month))

	res, err := r.db.ExecContext(ctx, `
		UPDATE parcels SET paid = 1
		WHERE card_id = ? AND paid = 0 AND due_date >= ? AND due_date <= ?`,
		cardID, formatDate(first), formatDate(last))
	if err != nil {
		return 0, fmt.Errorf("mark parcels paid: %w", err)
	}
	return res.RowsAffected()
}

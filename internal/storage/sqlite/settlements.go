package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

// ReplaceSettlements swaps the outing's unpaid plan for txs. Paid rows stay as
// payment history. IDs are assigned to txs in place.
func (s *SQLiteStore) ReplaceSettlements(ctx context.Context, outingID string, txs []models.SettlementTransaction) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := outingExists(ctx, tx, outingID); err != nil {
			return err
		}
		if err := clearUnpaidSettlements(ctx, tx, outingID); err != nil {
			return err
		}

		for i := range txs {
			t := &txs[i]
			if t.ID == "" {
				t.ID = s.ids.NewID("settlement")
			}
			t.OutingID = outingID

			var paidAt any
			if t.PaidAt != nil {
				paidAt = t.PaidAt.Unix()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO settlements (id, outing_id, from_person, to_person, amount, paid, paid_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				t.ID, outingID, t.FromPerson, t.ToPerson, t.Amount.Cents(), t.Paid, paidAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert settlement: %w", err)
			}
		}
		return nil
	})
}

// ListSettlements returns every transaction of the outing in the order it was
// stored, so paid history from earlier plans comes first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, outingID string) ([]models.SettlementTransaction, error) {
	return listSettlements(ctx, s.db, outingID)
}

// MarkSettlementPaid records that a transaction was paid at the given time.
// Times are stored with second precision.
func (s *SQLiteStore) MarkSettlementPaid(ctx context.Context, outingID, txID string, at time.Time) (*models.SettlementTransaction, error) {
	var out *models.SettlementTransaction
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := getSettlement(ctx, tx, outingID, txID)
		if err != nil {
			return err
		}
		if err := t.MarkPaid(at.Truncate(time.Second)); err != nil {
			return fmt.Errorf("settlement %s: %w", txID, err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE settlements SET paid = 1, paid_at = ? WHERE id = ?",
			t.PaidAt.Unix(), t.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update settlement: %w", err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// clearUnpaidSettlements invalidates the current plan. Paid rows are history
// and stay.
func clearUnpaidSettlements(ctx context.Context, tx *sql.Tx, outingID string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE outing_id = ? AND paid = 0", outingID); err != nil {
		return fmt.Errorf("failed to clear unpaid settlements: %w", err)
	}
	return nil
}

const settlementColumns = `id, outing_id, from_person, to_person, amount, paid, paid_at`

func scanSettlement(scan func(dest ...any) error) (models.SettlementTransaction, error) {
	var (
		t      models.SettlementTransaction
		amount int64
		paidAt sql.NullInt64
	)
	if err := scan(&t.ID, &t.OutingID, &t.FromPerson, &t.ToPerson, &amount, &t.Paid, &paidAt); err != nil {
		return t, err
	}
	t.Amount = money.Cents(amount)
	if paidAt.Valid {
		at := time.Unix(paidAt.Int64, 0).UTC()
		t.PaidAt = &at
	}
	return t, nil
}

func getSettlement(ctx context.Context, q querier, outingID, txID string) (*models.SettlementTransaction, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ? AND outing_id = ?`,
		txID, outingID,
	)
	t, err := scanSettlement(row.Scan)
	if err != nil {
		return nil, notFound(err, "settlement", txID)
	}
	return &t, nil
}

func listSettlements(ctx context.Context, q querier, outingID string) ([]models.SettlementTransaction, error) {
	txs := []models.SettlementTransaction{}
	err := eachRow(ctx, q,
		`SELECT `+settlementColumns+` FROM settlements WHERE outing_id = ? ORDER BY rowid`,
		[]any{outingID},
		func(rows *sql.Rows) error {
			t, err := scanSettlement(rows.Scan)
			if err != nil {
				return err
			}
			txs = append(txs, t)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return txs, nil
}

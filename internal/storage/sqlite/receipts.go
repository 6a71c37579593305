package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

// CreateReceipt persists a new receipt with its items and assignments. The
// outing's unpaid settlement plan is dropped since its balances changed.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := outingExists(ctx, tx, receipt.OutingID); err != nil {
			return err
		}
		if err := s.insertReceipt(ctx, tx, receipt); err != nil {
			return err
		}
		return clearUnpaidSettlements(ctx, tx, receipt.OutingID)
	})
}

// UpdateReceipt overwrites a receipt. Items and included people are replaced
// wholesale; items without an ID get a new one. Unpaid settlements of the
// outing are dropped.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE receipts SET vendor_name = ?, image_url = ?, subtotal = ?, tax = ?, tip = ?, total = ?,
			 paid_by = ?, split_method = ?, processed_at = ?
			 WHERE id = ? AND outing_id = ?`,
			receipt.VendorName, receipt.ImageURL,
			receipt.Subtotal.Cents(), receipt.Tax.Cents(), receipt.Tip.Cents(), receipt.Total.Cents(),
			receipt.PaidBy, string(receipt.SplitMethod), receipt.ProcessedAt,
			receipt.ID, receipt.OutingID,
		)
		if err != nil {
			return fmt.Errorf("failed to update receipt: %w", err)
		}
		if err := requireRow(res, "receipt", receipt.ID); err != nil {
			return err
		}

		// Assignments go with their items through ON DELETE CASCADE.
		if _, err := tx.ExecContext(ctx, "DELETE FROM receipt_items WHERE receipt_id = ?", receipt.ID); err != nil {
			return fmt.Errorf("failed to clear receipt items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM receipt_people WHERE receipt_id = ?", receipt.ID); err != nil {
			return fmt.Errorf("failed to clear included people: %w", err)
		}
		if err := s.insertReceiptChildren(ctx, tx, receipt); err != nil {
			return err
		}
		return clearUnpaidSettlements(ctx, tx, receipt.OutingID)
	})
}

// DeleteReceipt removes a receipt and everything hanging off it, along with
// the outing's unpaid settlements.
func (s *SQLiteStore) DeleteReceipt(ctx context.Context, outingID, receiptID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM receipts WHERE id = ? AND outing_id = ?", receiptID, outingID)
		if err != nil {
			return fmt.Errorf("failed to delete receipt: %w", err)
		}
		if err := requireRow(res, "receipt", receiptID); err != nil {
			return err
		}
		return clearUnpaidSettlements(ctx, tx, outingID)
	})
}

func (s *SQLiteStore) insertReceipt(ctx context.Context, tx *sql.Tx, r *models.Receipt) error {
	if r.ID == "" {
		r.ID = s.ids.NewID("receipt")
	}
	if r.ProcessedAt == 0 {
		r.ProcessedAt = time.Now().Unix()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO receipts (id, outing_id, vendor_name, image_url, subtotal, tax, tip, total, paid_by, split_method, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OutingID, r.VendorName, r.ImageURL,
		r.Subtotal.Cents(), r.Tax.Cents(), r.Tip.Cents(), r.Total.Cents(),
		r.PaidBy, string(r.SplitMethod), r.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return s.insertReceiptChildren(ctx, tx, r)
}

func (s *SQLiteStore) insertReceiptChildren(ctx context.Context, tx *sql.Tx, r *models.Receipt) error {
	for i := range r.Items {
		item := &r.Items[i]
		if item.ID == "" {
			item.ID = s.ids.NewID("item")
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO receipt_items (id, receipt_id, name, price, quantity) VALUES (?, ?, ?, ?, ?)",
			item.ID, r.ID, item.Name, item.Price.Cents(), item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, personID := range item.AssignedTo {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignees (item_id, person_id) VALUES (?, ?)",
				item.ID, personID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	for _, personID := range r.IncludedPeople {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO receipt_people (receipt_id, person_id) VALUES (?, ?)",
			r.ID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert included person: %w", err)
		}
	}
	return nil
}

// loadReceipts reads every receipt of an outing in four flat queries and
// stitches items, assignees and included people back together.
func loadReceipts(ctx context.Context, q querier, outingID string) ([]models.Receipt, error) {
	receipts := []models.Receipt{}
	byID := make(map[string]int)

	err := eachRow(ctx, q,
		`SELECT id, outing_id, vendor_name, image_url, subtotal, tax, tip, total, paid_by, split_method, processed_at
		 FROM receipts WHERE outing_id = ? ORDER BY rowid`,
		[]any{outingID},
		func(rows *sql.Rows) error {
			var (
				r                         models.Receipt
				subtotal, tax, tip, total int64
				splitMethod               string
			)
			if err := rows.Scan(&r.ID, &r.OutingID, &r.VendorName, &r.ImageURL,
				&subtotal, &tax, &tip, &total, &r.PaidBy, &splitMethod, &r.ProcessedAt); err != nil {
				return err
			}
			r.Subtotal = money.Cents(subtotal)
			r.Tax = money.Cents(tax)
			r.Tip = money.Cents(tip)
			r.Total = money.Cents(total)
			r.SplitMethod = models.SplitMethod(splitMethod)
			r.Items = []models.ReceiptItem{}
			r.IncludedPeople = []string{}
			byID[r.ID] = len(receipts)
			receipts = append(receipts, r)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipts: %w", err)
	}
	if len(receipts) == 0 {
		return receipts, nil
	}

	type itemRef struct{ receipt, item int }
	items := make(map[string]itemRef)
	err = eachRow(ctx, q,
		`SELECT i.id, i.receipt_id, i.name, i.price, i.quantity
		 FROM receipt_items i JOIN receipts r ON r.id = i.receipt_id
		 WHERE r.outing_id = ? ORDER BY i.rowid`,
		[]any{outingID},
		func(rows *sql.Rows) error {
			var (
				item      models.ReceiptItem
				receiptID string
				price     int64
			)
			if err := rows.Scan(&item.ID, &receiptID, &item.Name, &price, &item.Quantity); err != nil {
				return err
			}
			item.Price = money.Cents(price)
			item.AssignedTo = []string{}
			ri := byID[receiptID]
			items[item.ID] = itemRef{receipt: ri, item: len(receipts[ri].Items)}
			receipts[ri].Items = append(receipts[ri].Items, item)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	err = eachRow(ctx, q,
		`SELECT a.item_id, a.person_id
		 FROM item_assignees a
		 JOIN receipt_items i ON i.id = a.item_id
		 JOIN receipts r ON r.id = i.receipt_id
		 WHERE r.outing_id = ? ORDER BY a.rowid`,
		[]any{outingID},
		func(rows *sql.Rows) error {
			var itemID, personID string
			if err := rows.Scan(&itemID, &personID); err != nil {
				return err
			}
			ref := items[itemID]
			item := &receipts[ref.receipt].Items[ref.item]
			item.AssignedTo = append(item.AssignedTo, personID)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}

	err = eachRow(ctx, q,
		`SELECT rp.receipt_id, rp.person_id
		 FROM receipt_people rp JOIN receipts r ON r.id = rp.receipt_id
		 WHERE r.outing_id = ? ORDER BY rp.rowid`,
		[]any{outingID},
		func(rows *sql.Rows) error {
			var receiptID, personID string
			if err := rows.Scan(&receiptID, &personID); err != nil {
				return err
			}
			r := &receipts[byID[receiptID]]
			r.IncludedPeople = append(r.IncludedPeople, personID)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get included people: %w", err)
	}

	return receipts, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/outlate/internal/models"
)

// querier is the part of *sql.DB and *sql.Tx the loaders need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// eachRow runs scan for every row of the query. Rows are closed before it
// returns, so callers may issue the next query right after.
func eachRow(ctx context.Context, q querier, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CreateOuting persists a new outing with its people and any receipts.
func (s *SQLiteStore) CreateOuting(ctx context.Context, outing *models.Outing) error {
	if outing.ID == "" {
		outing.ID = s.ids.NewID("outing")
	}
	if outing.CreatedAt == 0 {
		outing.CreatedAt = time.Now().Unix()
	}
	if outing.Status == "" {
		outing.Status = models.StatusActive
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO outings (id, name, date, created_by, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			outing.ID, outing.Name, outing.Date.Unix(), outing.CreatedBy, string(outing.Status), outing.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert outing: %w", err)
		}

		for i := range outing.People {
			if err := s.insertPerson(ctx, tx, outing.ID, &outing.People[i]); err != nil {
				return err
			}
		}
		for i := range outing.Receipts {
			r := &outing.Receipts[i]
			r.OutingID = outing.ID
			if err := s.insertReceipt(ctx, tx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOuting retrieves an outing by ID, including people, receipts, items and
// assignments.
func (s *SQLiteStore) GetOuting(ctx context.Context, outingID string) (*models.Outing, error) {
	return loadOuting(ctx, s.db, outingID)
}

// ListOutingsByCreator returns the user's outings, most recent date first.
func (s *SQLiteStore) ListOutingsByCreator(ctx context.Context, userID string) ([]*models.Outing, error) {
	var ids []string
	err := eachRow(ctx, s.db,
		"SELECT id FROM outings WHERE created_by = ? ORDER BY date DESC, created_at DESC, id",
		[]any{userID},
		func(rows *sql.Rows) error {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outings: %w", err)
	}

	outings := make([]*models.Outing, 0, len(ids))
	for _, id := range ids {
		o, err := loadOuting(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		outings = append(outings, o)
	}
	return outings, nil
}

// SetOutingStatus stores the latched status of an outing.
func (s *SQLiteStore) SetOutingStatus(ctx context.Context, outingID string, status models.OutingStatus) error {
	res, err := s.db.ExecContext(ctx, "UPDATE outings SET status = ? WHERE id = ?", string(status), outingID)
	if err != nil {
		return fmt.Errorf("failed to update outing status: %w", err)
	}
	return requireRow(res, "outing", outingID)
}

// AddPerson adds a participant to an existing outing.
func (s *SQLiteStore) AddPerson(ctx context.Context, outingID string, person *models.Person) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := outingExists(ctx, tx, outingID); err != nil {
			return err
		}
		return s.insertPerson(ctx, tx, outingID, person)
	})
}

func (s *SQLiteStore) insertPerson(ctx context.Context, tx *sql.Tx, outingID string, p *models.Person) error {
	if p.ID == "" {
		p.ID = s.ids.NewID("person")
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO people (id, outing_id, name, color) VALUES (?, ?, ?, ?)",
		p.ID, outingID, p.Name, p.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

func outingExists(ctx context.Context, q querier, outingID string) error {
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM outings WHERE id = ?", outingID).Scan(&exists)
	if err != nil {
		return notFound(err, "outing", outingID)
	}
	return nil
}

func loadOuting(ctx context.Context, q querier, outingID string) (*models.Outing, error) {
	outing := &models.Outing{}
	var (
		date   int64
		status string
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, name, date, created_by, status, created_at FROM outings WHERE id = ?",
		outingID,
	).Scan(&outing.ID, &outing.Name, &date, &outing.CreatedBy, &status, &outing.CreatedAt)
	if err != nil {
		return nil, notFound(err, "outing", outingID)
	}
	outing.Date = time.Unix(date, 0).UTC()
	if outing.Status, err = models.ParseOutingStatus(status); err != nil {
		return nil, fmt.Errorf("outing %s: %w", outingID, err)
	}

	outing.People = []models.Person{}
	err = eachRow(ctx, q,
		"SELECT id, name, color FROM people WHERE outing_id = ? ORDER BY rowid",
		[]any{outingID},
		func(rows *sql.Rows) error {
			var p models.Person
			if err := rows.Scan(&p.ID, &p.Name, &p.Color); err != nil {
				return err
			}
			outing.People = append(outing.People, p)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}

	if outing.Receipts, err = loadReceipts(ctx, q, outingID); err != nil {
		return nil, err
	}
	return outing, nil
}

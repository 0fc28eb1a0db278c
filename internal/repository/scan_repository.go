package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// ScanRepo provides operations for ticket_scans. Scans are insert-only:
// the scanning endpoint and the online ticketing import create them and
// the billing pipeline reads them. The unique key on code makes a second
// scan of the same ticket a detectable duplicate.
type ScanRepo struct {
	db *sql.DB
}

// NewScanRepo returns a new ScanRepo bound to the given database.
func NewScanRepo(db *sql.DB) *ScanRepo { return &ScanRepo{db: db} }

const scanColumns = `id, slot_id, code, kind, persons, scanned_by, created_at`

func scanTicketScan(row interface{ Scan(dest ...interface{}) error }) (model.TicketScan, error) {
	var (
		t         model.TicketScan
		persons   sql.NullInt64
		scannedBy sql.NullString
	)
	err := row.Scan(&t.ID, &t.SlotID, &t.Code, &t.Kind, &persons, &scannedBy, &t.CreatedAt)
	if err != nil {
		return model.TicketScan{}, err
	}
	if persons.Valid {
		v := uint32(persons.Int64)
		t.Persons = &v
	}
	if scannedBy.Valid {
		v := scannedBy.String
		t.ScannedBy = &v
	}
	return t, nil
}

// Create inserts a new scan and populates its generated ID. A duplicate
// ticket code yields ErrDuplicateScan via the MySQL 1062 duplicate-key
// error rather than a read-then-write check.
func (r *ScanRepo) Create(ctx context.Context, scan *model.TicketScan) error {
	const q = `INSERT INTO ticket_scans (slot_id, code, kind, persons, scanned_by) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, scan.SlotID, scan.Code, scan.Kind, scan.Persons, scan.ScannedBy)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrDuplicateScan
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	scan.ID = uint64(id)
	return nil
}

// ListBySlot returns all scans for one slot ordered by insertion.
func (r *ScanRepo) ListBySlot(ctx context.Context, slotID uint64) ([]model.TicketScan, error) {
	const q = `SELECT ` + scanColumns + ` FROM ticket_scans WHERE slot_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketScan
	for rows.Next() {
		t, err := scanTicketScan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListBySlots returns all scans belonging to any of the given slots in a
// single query. Passing an empty slice returns an empty result.
func (r *ScanRepo) ListBySlots(ctx context.Context, slotIDs []uint64) ([]model.TicketScan, error) {
	if len(slotIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + scanColumns + ` FROM ticket_scans WHERE slot_id IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(slotIDs)), ",") + `)`
	args := make([]interface{}, 0, len(slotIDs))
	for _, id := range slotIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketScan
	for rows.Next() {
		t, err := scanTicketScan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

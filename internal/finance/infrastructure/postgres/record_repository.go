package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	finance "e2d/internal/finance/domain"
)

// RecordRepository persists financial records of every kind in one table.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ListFilter narrows listing by optional equality filters.
type ListFilter struct {
	Kind      finance.Kind
	MemberID  string
	MeetingID string
}

// ListByKind returns every record of one kind ordered by date.
func (r *RecordRepository) ListByKind(ctx context.Context, kind finance.Kind) ([]finance.Record, error) {
	return r.List(ctx, ListFilter{Kind: kind})
}

// List returns records matching the filter, ordered by record date.
func (r *RecordRepository) List(ctx context.Context, filter ListFilter) ([]finance.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, kind, member_id, member_name, category, amount, record_date, meeting_id, status, interest_rate
FROM financial_records
WHERE ($1 = '' OR kind = $1)
	AND ($2 = '' OR member_id = $2)
	AND ($3 = '' OR meeting_id = $3)
ORDER BY record_date, id`, string(filter.Kind), filter.MemberID, filter.MeetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []finance.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Get loads one record by id.
func (r *RecordRepository) Get(ctx context.Context, id string) (*finance.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, kind, member_id, member_name, category, amount, record_date, meeting_id, status, interest_rate
FROM financial_records
WHERE id = $1`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, finance.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a record.
func (r *RecordRepository) Create(ctx context.Context, record *finance.Record) error {
	if r == nil || r.db == nil {
		return errors.New("record repo: nil db")
	}
	if record == nil {
		return errors.New("record repo: nil record")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO financial_records (
	id, kind, member_id, member_name, category, amount, record_date, meeting_id, status, interest_rate, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		record.ID, string(record.Kind), record.MemberID, record.MemberName, record.Category,
		record.Amount.String(), record.RecordDate, record.MeetingID, string(record.Status),
		record.InterestRate.String(), time.Now().UTC())
	return err
}

// Update overwrites the mutable fields of a record.
func (r *RecordRepository) Update(ctx context.Context, record *finance.Record) error {
	if r == nil || r.db == nil {
		return errors.New("record repo: nil db")
	}
	if record == nil {
		return errors.New("record repo: nil record")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE financial_records
SET member_name = $2, category = $3, amount = $4, record_date = $5, meeting_id = $6, status = $7, interest_rate = $8
WHERE id = $1`,
		record.ID, record.MemberName, record.Category, record.Amount.String(),
		record.RecordDate, record.MeetingID, string(record.Status), record.InterestRate.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return finance.ErrNotFound
	}
	return nil
}

// Delete removes a record by id.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("record repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM financial_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return finance.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (finance.Record, error) {
	var record finance.Record
	var kind, status string
	var meetingID sql.NullString
	var amount, interestRate string
	err := row.Scan(&record.ID, &kind, &record.MemberID, &record.MemberName, &record.Category,
		&amount, &record.RecordDate, &meetingID, &status, &interestRate)
	if err != nil {
		return finance.Record{}, err
	}
	record.Kind = finance.Kind(kind)
	record.Status = finance.Status(status)
	record.MeetingID = meetingID.String
	record.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return finance.Record{}, err
	}
	record.InterestRate, err = decimal.NewFromString(interestRate)
	if err != nil {
		return finance.Record{}, err
	}
	return record, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	periods "e2d/internal/periods/domain"
)

// PeriodRepository persists fiscal periods.
type PeriodRepository struct {
	db *sql.DB
}

// NewPeriodRepository constructs a repository.
func NewPeriodRepository(db *sql.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns every fiscal period ordered by start date descending, so the
// most recent exercise comes first.
func (r *PeriodRepository) List(ctx context.Context) ([]periods.FiscalPeriod, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("period repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, start_date, end_date
FROM fiscal_periods
ORDER BY start_date DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []periods.FiscalPeriod
	for rows.Next() {
		var p periods.FiscalPeriod
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Get loads one fiscal period by id.
func (r *PeriodRepository) Get(ctx context.Context, id string) (*periods.FiscalPeriod, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("period repo: nil db")
	}
	var p periods.FiscalPeriod
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, start_date, end_date
FROM fiscal_periods
WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, periods.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a fiscal period.
func (r *PeriodRepository) Create(ctx context.Context, p *periods.FiscalPeriod) error {
	if r == nil || r.db == nil {
		return errors.New("period repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO fiscal_periods (id, name, start_date, end_date)
VALUES ($1, $2, $3, $4)`, p.ID, p.Name, p.StartDate, p.EndDate)
	return err
}

// Update rewrites a fiscal period.
func (r *PeriodRepository) Update(ctx context.Context, p *periods.FiscalPeriod) error {
	if r == nil || r.db == nil {
		return errors.New("period repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE fiscal_periods
SET name = $2, start_date = $3, end_date = $4
WHERE id = $1`, p.ID, p.Name, p.StartDate, p.EndDate)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return periods.ErrNotFound
	}
	return nil
}

// MeetingRepository persists meetings.
type MeetingRepository struct {
	db *sql.DB
}

// NewMeetingRepository constructs a repository.
func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// List returns every meeting ordered by date.
func (r *MeetingRepository) List(ctx context.Context) ([]periods.Meeting, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("meeting repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, subject, meeting_date
FROM meetings
ORDER BY meeting_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []periods.Meeting
	for rows.Next() {
		var m periods.Meeting
		if err := rows.Scan(&m.ID, &m.Subject, &m.Date); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Get loads one meeting by id.
func (r *MeetingRepository) Get(ctx context.Context, id string) (*periods.Meeting, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("meeting repo: nil db")
	}
	var m periods.Meeting
	err := r.db.QueryRowContext(ctx, `
SELECT id, subject, meeting_date
FROM meetings
WHERE id = $1`, id).Scan(&m.ID, &m.Subject, &m.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, periods.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a meeting.
func (r *MeetingRepository) Create(ctx context.Context, m *periods.Meeting) error {
	if r == nil || r.db == nil {
		return errors.New("meeting repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO meetings (id, subject, meeting_date)
VALUES ($1, $2, $3)`, m.ID, m.Subject, m.Date)
	return err
}

// Delete removes a meeting.
func (r *MeetingRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("meeting repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return periods.ErrNotFound
	}
	return nil
}

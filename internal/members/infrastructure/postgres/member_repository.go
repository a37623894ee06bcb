package postgres

import (
	"context"
	"database/sql"
	"errors"

	members "e2d/internal/members/domain"
)

// MemberRepository persists association members.
type MemberRepository struct {
	db *sql.DB
}

// NewMemberRepository constructs a repository.
func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// List returns members ordered by last name, optionally only active ones.
func (r *MemberRepository) List(ctx context.Context, activeOnly bool) ([]members.Member, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("member repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, first_name, last_name, phone, email, bureau, joined_at, active
FROM members
WHERE ($1 = false OR active = true)
ORDER BY last_name, first_name`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []members.Member
	for rows.Next() {
		var m members.Member
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Phone, &m.Email, &m.Bureau, &m.JoinedAt, &m.Active); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// Get loads one member by id.
func (r *MemberRepository) Get(ctx context.Context, id string) (*members.Member, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("member repo: nil db")
	}
	var m members.Member
	err := r.db.QueryRowContext(ctx, `
SELECT id, first_name, last_name, phone, email, bureau, joined_at, active
FROM members
WHERE id = $1`, id).Scan(&m.ID, &m.FirstName, &m.LastName, &m.Phone, &m.Email, &m.Bureau, &m.JoinedAt, &m.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, members.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a member.
func (r *MemberRepository) Create(ctx context.Context, m *members.Member) error {
	if r == nil || r.db == nil {
		return errors.New("member repo: nil db")
	}
	if m == nil {
		return errors.New("member repo: nil member")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO members (id, first_name, last_name, phone, email, bureau, joined_at, active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.FirstName, m.LastName, m.Phone, m.Email, m.Bureau, m.JoinedAt, m.Active)
	return err
}

// Update overwrites a member's mutable fields.
func (r *MemberRepository) Update(ctx context.Context, m *members.Member) error {
	if r == nil || r.db == nil {
		return errors.New("member repo: nil db")
	}
	if m == nil {
		return errors.New("member repo: nil member")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE members
SET first_name = $2, last_name = $3, phone = $4, email = $5, bureau = $6, active = $7
WHERE id = $1`, m.ID, m.FirstName, m.LastName, m.Phone, m.Email, m.Bureau, m.Active)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return members.ErrNotFound
	}
	return nil
}

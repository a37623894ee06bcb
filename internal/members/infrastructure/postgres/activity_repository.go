package postgres

import (
	"context"
	"database/sql"
	"errors"

	members "e2d/internal/members/domain"
)

// ActivityRepository persists sports activity entries.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository constructs a repository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns activities ordered by date, optionally for one member.
func (r *ActivityRepository) List(ctx context.Context, memberID string) ([]members.Activity, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("activity repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, member_id, discipline, activity_date, result
FROM sports_activities
WHERE ($1 = '' OR member_id = $1)
ORDER BY activity_date, id`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []members.Activity
	for rows.Next() {
		var a members.Activity
		var res string
		if err := rows.Scan(&a.ID, &a.MemberID, &a.Discipline, &a.Date, &res); err != nil {
			return nil, err
		}
		a.Result = members.Result(res)
		result = append(result, a)
	}
	return result, rows.Err()
}

// Create inserts an activity entry.
func (r *ActivityRepository) Create(ctx context.Context, a *members.Activity) error {
	if r == nil || r.db == nil {
		return errors.New("activity repo: nil db")
	}
	if a == nil {
		return errors.New("activity repo: nil activity")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sports_activities (id, member_id, discipline, activity_date, result)
VALUES ($1,$2,$3,$4,$5)`, a.ID, a.MemberID, a.Discipline, a.Date, string(a.Result))
	return err
}

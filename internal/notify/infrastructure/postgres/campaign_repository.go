package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	notify "e2d/internal/notify/domain"
)

// CampaignRepository persists notification campaigns.
type CampaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository constructs a repository.
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, name, template, state, audience, scheduled_at, sent_count, failed_count, created_at, updated_at`

// List returns every campaign, newest first.
func (r *CampaignRepository) List(ctx context.Context) ([]notify.Campaign, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("campaign repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+campaignColumns+`
FROM campaigns
ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []notify.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Get loads one campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*notify.Campaign, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("campaign repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+campaignColumns+`
FROM campaigns
WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notify.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *notify.Campaign) error {
	if r == nil || r.db == nil {
		return errors.New("campaign repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO campaigns (`+campaignColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Template, string(c.State), string(c.Audience),
		nullableTime(c.ScheduledAt), c.SentCount, c.FailedCount, c.CreatedAt, c.UpdatedAt)
	return err
}

// Update rewrites campaign state and counters.
func (r *CampaignRepository) Update(ctx context.Context, c *notify.Campaign) error {
	if r == nil || r.db == nil {
		return errors.New("campaign repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE campaigns
SET name = $2, template = $3, state = $4, audience = $5, scheduled_at = $6,
	sent_count = $7, failed_count = $8, updated_at = $9
WHERE id = $1`,
		c.ID, c.Name, c.Template, string(c.State), string(c.Audience),
		nullableTime(c.ScheduledAt), c.SentCount, c.FailedCount, c.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notify.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (notify.Campaign, error) {
	var (
		c           notify.Campaign
		state       string
		audience    string
		scheduledAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Name, &c.Template, &state, &audience,
		&scheduledAt, &c.SentCount, &c.FailedCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return notify.Campaign{}, err
	}
	c.State = notify.State(state)
	c.Audience = notify.Audience(audience)
	if scheduledAt.Valid {
		c.ScheduledAt = scheduledAt.Time
	}
	return c, nil
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

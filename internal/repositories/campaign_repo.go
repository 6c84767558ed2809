package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulse-crm/backend/internal/models"
)

const campaignColumns = `id, title, date, type, status, target_groups, subject, content, design, created_by, created_at, updated_at`

type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

func scanCampaign(row pgx.Row, c *models.Campaign) error {
	return row.Scan(&c.ID, &c.Title, &c.Date, &c.Type, &c.Status, &c.TargetGroups,
		&c.Subject, &c.Content, &c.Design, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (title, date, type, status, target_groups, subject, content, design, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, c.Title, c.Date, c.Type, c.Status, c.TargetGroups, c.Subject, c.Content, c.Design, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var c models.Campaign
	row := r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	if err := scanCampaign(row, &c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Update overwrites the editable fields; concurrent edits are last-write-wins.
func (r *CampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	return affected(r.pool.Exec(ctx, `
		UPDATE campaigns SET title = $1, date = $2, type = $3, status = $4, target_groups = $5,
		       subject = $6, content = $7, design = $8, updated_at = now()
		WHERE id = $9
	`, c.Title, c.Date, c.Type, c.Status, c.TargetGroups, c.Subject, c.Content, c.Design, c.ID))
}

func (r *CampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return affected(r.pool.Exec(ctx, `UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2`, status, id))
}

// CompleteIfDrained moves a sending campaign to sent once none of its queue entries are outstanding.
func (r *CampaignRepo) CompleteIfDrained(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		  AND NOT EXISTS (
			SELECT 1 FROM email_queue q
			WHERE q.campaign_id = $2 AND q.status IN ($4, $5)
		  )
	`, models.CampaignStatusSent, id, models.CampaignStatusSending,
		models.QueueStatusPending, models.QueueStatusSending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CampaignRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id))
}

type CampaignFilter struct {
	Type   *string
	Status *string
	Search *string
	Limit  int
	Offset int
}

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter) ([]models.Campaign, error) {
	var w where
	if f.Type != nil {
		w.add("type = $%d", *f.Type)
	}
	if f.Status != nil {
		w.add("status = $%d", *f.Status)
	}
	if f.Search != nil {
		w.add("title ILIKE '%%' || $%d || '%%'", *f.Search)
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns` + w.sql() + w.page("created_at DESC", f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

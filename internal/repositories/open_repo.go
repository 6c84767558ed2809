package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulse-crm/backend/internal/models"
)

type OpenRepo struct {
	pool *pgxpool.Pool
}

func NewOpenRepo(pool *pgxpool.Pool) *OpenRepo {
	return &OpenRepo{pool: pool}
}

func (r *OpenRepo) Record(ctx context.Context, o *models.Open) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO email_opens (campaign_id, email, ip, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, opened_at
	`, o.CampaignID, o.Email, o.IP, o.UserAgent).Scan(&o.ID, &o.OpenedAt)
}

func (r *OpenRepo) Stats(ctx context.Context, campaignID string) (models.OpenStats, error) {
	var st models.OpenStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*), count(DISTINCT lower(email)) FROM email_opens WHERE campaign_id = $1
	`, campaignID).Scan(&st.Total, &st.Unique)
	return st, err
}

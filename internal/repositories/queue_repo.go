package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulse-crm/backend/internal/models"
)

type QueueRepo struct {
	pool *pgxpool.Pool
}

func NewQueueRepo(pool *pgxpool.Pool) *QueueRepo {
	return &QueueRepo{pool: pool}
}

// ClaimPending flips up to limit pending entries to sending and returns them.
// SKIP LOCKED lets the API trigger and the worker drain concurrently without overlap.
func (r *QueueRepo) ClaimPending(ctx context.Context, limit int) ([]models.QueueEntry, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE email_queue SET status = $1, updated_at = now()
		WHERE id IN (
			SELECT id FROM email_queue
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, campaign_id, schedule_id, contact_id, email, name, status, error_message, created_at, updated_at
	`, models.QueueStatusSending, models.QueueStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		var e models.QueueEntry
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.ScheduleID, &e.ContactID, &e.Email, &e.Name,
			&e.Status, &e.ErrorMessage, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *QueueRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `
		UPDATE email_queue SET status = $1, error_message = NULL, updated_at = now() WHERE id = $2
	`, models.QueueStatusSent, id))
}

func (r *QueueRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return affected(r.pool.Exec(ctx, `
		UPDATE email_queue SET status = $1, error_message = $2, updated_at = now() WHERE id = $3
	`, models.QueueStatusFailed, reason, id))
}

// Requeue returns a claimed entry to pending so a later batch picks it up again.
func (r *QueueRepo) Requeue(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `
		UPDATE email_queue SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
	`, models.QueueStatusPending, id, models.QueueStatusSending))
}

// Stats counts entries by status, optionally for a single campaign.
func (r *QueueRepo) Stats(ctx context.Context, campaignID *uuid.UUID) (models.QueueStats, error) {
	var w where
	if campaignID != nil {
		w.add("campaign_id = $%d", *campaignID)
	}
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM email_queue`+w.sql()+` GROUP BY status`, w.args...)
	if err != nil {
		return models.QueueStats{}, err
	}
	defer rows.Close()

	var st models.QueueStats
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return models.QueueStats{}, err
		}
		switch status {
		case models.QueueStatusPending:
			st.Pending = n
		case models.QueueStatusSending:
			st.Sending = n
		case models.QueueStatusSent:
			st.Sent = n
		case models.QueueStatusFailed:
			st.Failed = n
		}
		st.Total += n
	}
	return st, rows.Err()
}

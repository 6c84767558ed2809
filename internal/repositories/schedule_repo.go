package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulse-crm/backend/internal/db"
	"github.com/pulse-crm/backend/internal/models"
)

const scheduleJoinColumns = `
	s.id, s.campaign_id, s.scheduled_at, s.status, s.recipient_type, s.recipient_email,
	s.recipient_group, s.error_message, s.created_at, s.updated_at,
	c.title, c.subject, c.content, c.design`

type ScheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

func scanScheduleWithCampaign(row pgx.Row, s *models.ScheduleWithCampaign) error {
	return row.Scan(&s.ID, &s.CampaignID, &s.ScheduledAt, &s.Status, &s.RecipientType,
		&s.RecipientEmail, &s.RecipientGroup, &s.ErrorMessage, &s.CreatedAt, &s.UpdatedAt,
		&s.CampaignTitle, &s.CampaignSubject, &s.CampaignContent, &s.CampaignDesign)
}

func (r *ScheduleRepo) Create(ctx context.Context, s *models.Schedule) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO email_schedule (campaign_id, scheduled_at, status, recipient_type, recipient_email, recipient_group)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, s.CampaignID, s.ScheduledAt, s.Status, s.RecipientType, s.RecipientEmail, s.RecipientGroup,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return translate(err)
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduleWithCampaign, error) {
	var s models.ScheduleWithCampaign
	row := r.pool.QueryRow(ctx, `
		SELECT `+scheduleJoinColumns+`
		FROM email_schedule s
		JOIN campaigns c ON c.id = s.campaign_id
		WHERE s.id = $1
	`, id)
	if err := scanScheduleWithCampaign(row, &s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

type ScheduleFilter struct {
	CampaignID *uuid.UUID
	Status     *string
	Limit      int
	Offset     int
}

func (r *ScheduleRepo) List(ctx context.Context, f ScheduleFilter) ([]models.ScheduleWithCampaign, error) {
	var w where
	if f.CampaignID != nil {
		w.add("s.campaign_id = $%d", *f.CampaignID)
	}
	if f.Status != nil {
		w.add("s.status = $%d", *f.Status)
	}
	query := `SELECT ` + scheduleJoinColumns + `
		FROM email_schedule s
		JOIN campaigns c ON c.id = s.campaign_id` + w.sql() + w.page("s.scheduled_at DESC", f.Limit, f.Offset)

	return r.query(ctx, query, w.args...)
}

// ListDue returns scheduled rows whose time has arrived, oldest first.
func (r *ScheduleRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduleWithCampaign, error) {
	return r.query(ctx, `
		SELECT `+scheduleJoinColumns+`
		FROM email_schedule s
		JOIN campaigns c ON c.id = s.campaign_id
		WHERE s.status = $1 AND s.scheduled_at <= $2
		ORDER BY s.scheduled_at
		LIMIT $3
	`, models.ScheduleStatusScheduled, now, limit)
}

// UpdatePending edits timing and audience, but only while the schedule has not fired.
// It reports false when the row exists in another state.
func (r *ScheduleRepo) UpdatePending(ctx context.Context, s *models.Schedule) (bool, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE email_schedule SET scheduled_at = $1, recipient_type = $2, recipient_email = $3,
		       recipient_group = $4, updated_at = now()
		WHERE id = $5 AND status = $6
		RETURNING updated_at
	`, s.ScheduledAt, s.RecipientType, s.RecipientEmail, s.RecipientGroup, s.ID, models.ScheduleStatusScheduled,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translate(err)
	}
	return true, nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM email_schedule WHERE id = $1`, id))
}

// Claim moves a schedule from scheduled to processing. Only one caller can win.
func (r *ScheduleRepo) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE email_schedule SET status = $1, updated_at = now()
		WHERE id = $2 AND status = ANY($3)
	`, models.ScheduleStatusProcessing, id, models.ScheduleSourcesFor(models.ScheduleStatusProcessing))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

var queueCopyColumns = []string{"campaign_id", "schedule_id", "contact_id", "email", "name", "status"}

// Fire enqueues one pending entry per recipient and marks the claimed schedule sent,
// all in one transaction, and flips the campaign to sending.
func (r *ScheduleRepo) Fire(ctx context.Context, s *models.Schedule, recipients []models.Recipient) (int64, error) {
	var copied int64
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows := make([][]any, 0, len(recipients))
		for _, rc := range recipients {
			rows = append(rows, []any{s.CampaignID, s.ID, rc.ContactID, rc.Email, rc.Name, models.QueueStatusPending})
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{"email_queue"}, queueCopyColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
		copied = n

		tag, err := tx.Exec(ctx, `
			UPDATE email_schedule SET status = $1, error_message = NULL, updated_at = now()
			WHERE id = $2 AND status = ANY($3)
		`, models.ScheduleStatusSent, s.ID, models.ScheduleSourcesFor(models.ScheduleStatusSent))
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("schedule %s is no longer processing", s.ID)
		}

		_, err = tx.Exec(ctx, `
			UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2 AND status <> $3
		`, models.CampaignStatusSending, s.CampaignID, models.CampaignStatusArchived)
		return err
	})
	return copied, err
}

func (r *ScheduleRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE email_schedule SET status = $1, error_message = $2, updated_at = now()
		WHERE id = $3 AND status = ANY($4)
	`, models.ScheduleStatusFailed, reason, id, models.ScheduleSourcesFor(models.ScheduleStatusFailed))
	return err
}

func (r *ScheduleRepo) query(ctx context.Context, query string, args ...any) ([]models.ScheduleWithCampaign, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []models.ScheduleWithCampaign{}
	for rows.Next() {
		var s models.ScheduleWithCampaign
		if err := scanScheduleWithCampaign(rows, &s); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulse-crm/backend/internal/models"
)

const contactColumns = `id, name, email, phone, group_name, opt1, opt2, opt3, notes, created_at, updated_at`

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

func scanContact(row pgx.Row, c *models.Contact) error {
	return row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Group,
		&c.Opt1, &c.Opt2, &c.Opt3, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ContactRepo) Create(ctx context.Context, c *models.Contact) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (name, email, phone, group_name, opt1, opt2, opt3, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.Name, c.Email, c.Phone, c.Group, c.Opt1, c.Opt2, c.Opt3, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

func (r *ContactRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var c models.Contact
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	if err := scanContact(row, &c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetByEmail returns the oldest contact with this email.
func (r *ContactRepo) GetByEmail(ctx context.Context, email string) (*models.Contact, error) {
	var c models.Contact
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE lower(email) = lower($1)
		ORDER BY created_at LIMIT 1
	`, email)
	if err := scanContact(row, &c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ContactRepo) Update(ctx context.Context, c *models.Contact) error {
	return affected(r.pool.Exec(ctx, `
		UPDATE contacts SET name = $1, email = $2, phone = $3, group_name = $4,
		       opt1 = $5, opt2 = $6, opt3 = $7, notes = $8, updated_at = now()
		WHERE id = $9
	`, c.Name, c.Email, c.Phone, c.Group, c.Opt1, c.Opt2, c.Opt3, c.Notes, c.ID))
}

func (r *ContactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id))
}

type ContactFilter struct {
	Group  *string
	Search *string
	Limit  int
	Offset int
}

func (r *ContactRepo) List(ctx context.Context, f ContactFilter) ([]models.Contact, error) {
	var w where
	if f.Group != nil {
		w.add("group_name = $%d", *f.Group)
	}
	if f.Search != nil {
		w.add("(name ILIKE '%%' || $%[1]d || '%%' OR email ILIKE '%%' || $%[1]d || '%%')", *f.Search)
	}
	query := `SELECT ` + contactColumns + ` FROM contacts` + w.sql() + w.page("created_at DESC", f.Limit, f.Offset)

	return r.query(ctx, query, w.args...)
}

// ListAll returns every contact; audience "all" is not paginated.
func (r *ContactRepo) ListAll(ctx context.Context) ([]models.Contact, error) {
	return r.query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at`)
}

// ListByGroup matches group names exactly and case-sensitively.
func (r *ContactRepo) ListByGroup(ctx context.Context, group string) ([]models.Contact, error) {
	return r.query(ctx, `SELECT `+contactColumns+` FROM contacts WHERE group_name = $1 ORDER BY created_at`, group)
}

// UpdatePreferences sets the opt flags on every contact sharing the email.
func (r *ContactRepo) UpdatePreferences(ctx context.Context, p models.Preferences) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts SET opt1 = $1, opt2 = $2, opt3 = $3, updated_at = now()
		WHERE lower(email) = lower($4)
	`, p.Opt1, p.Opt2, p.Opt3, p.Email)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Unsubscribe clears all opt flags, moves the contacts to group and appends note.
func (r *ContactRepo) Unsubscribe(ctx context.Context, email, group, note string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts SET opt1 = false, opt2 = false, opt3 = false, group_name = $1,
		       notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
		       updated_at = now()
		WHERE lower(email) = lower($3)
	`, group, note, email)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ContactRepo) query(ctx context.Context, query string, args ...any) ([]models.Contact, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

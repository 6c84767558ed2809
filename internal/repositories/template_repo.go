package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulse-crm/backend/internal/models"
)

type TemplateRepo struct {
	pool *pgxpool.Pool
}

func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

func (r *TemplateRepo) Create(ctx context.Context, t *models.Template) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO templates (name, subject, category, content, design)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, t.Name, t.Subject, t.Category, t.Content, t.Design).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return translate(err)
}

func (r *TemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var t models.Template
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, subject, category, content, design, created_at, updated_at
		FROM templates WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Subject, &t.Category, &t.Content, &t.Design, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TemplateRepo) Update(ctx context.Context, t *models.Template) error {
	return affected(r.pool.Exec(ctx, `
		UPDATE templates SET name = $1, subject = $2, category = $3, content = $4, design = $5, updated_at = now()
		WHERE id = $6
	`, t.Name, t.Subject, t.Category, t.Content, t.Design, t.ID))
}

func (r *TemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id))
}

func (r *TemplateRepo) List(ctx context.Context, category *string) ([]models.Template, error) {
	var w where
	if category != nil {
		w.add("category = $%d", *category)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, subject, category, content, design, created_at, updated_at
		FROM templates`+w.sql()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Category, &t.Content, &t.Design, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

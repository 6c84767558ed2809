package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulse-crm/backend/internal/db"
	"github.com/pulse-crm/backend/internal/models"
)

type GroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo {
	return &GroupRepo{pool: pool}
}

func (r *GroupRepo) Create(ctx context.Context, g *models.ContactGroup) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contact_groups (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, g.Name, g.Description).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	return translate(err)
}

func (r *GroupRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ContactGroup, error) {
	var g models.ContactGroup
	err := r.pool.QueryRow(ctx, `
		SELECT g.id, g.name, g.description,
		       (SELECT count(*) FROM contacts c WHERE c.group_name = g.name),
		       g.created_at, g.updated_at
		FROM contact_groups g WHERE g.id = $1
	`, id).Scan(&g.ID, &g.Name, &g.Description, &g.ContactCount, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (r *GroupRepo) List(ctx context.Context) ([]models.ContactGroup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, g.name, g.description, count(c.id), g.created_at, g.updated_at
		FROM contact_groups g
		LEFT JOIN contacts c ON c.group_name = g.name
		GROUP BY g.id
		ORDER BY g.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []models.ContactGroup{}
	for rows.Next() {
		var g models.ContactGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.ContactCount, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Update renames the group's members along with it when the name changes.
func (r *GroupRepo) Update(ctx context.Context, g *models.ContactGroup) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var oldName string
		err := tx.QueryRow(ctx, `SELECT name FROM contact_groups WHERE id = $1 FOR UPDATE`, g.ID).Scan(&oldName)
		if err != nil {
			return translate(err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE contact_groups SET name = $1, description = $2, updated_at = now()
			WHERE id = $3
		`, g.Name, g.Description, g.ID)
		if err != nil {
			return translate(err)
		}

		if oldName != g.Name {
			_, err = tx.Exec(ctx, `
				UPDATE contacts SET group_name = $1, updated_at = now() WHERE group_name = $2
			`, g.Name, oldName)
		}
		return err
	})
}

func (r *GroupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM contact_groups WHERE id = $1`, id))
}

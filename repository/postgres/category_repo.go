package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed implementation of CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) repository.CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByID(ctx context.Context, userID, id string) (*domain.Category, error) {
	const query = `
	SELECT id, user_id, name, color, created_at, updated_at
	FROM categories
	WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanCategory(row)
}

func (r *categoryRepository) List(ctx context.Context, userID string) ([]domain.Category, error) {
	const query = `
	SELECT id, user_id, name, color, created_at, updated_at
	FROM categories
	WHERE user_id = $1
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO categories (id, user_id, name, color)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		nullString(category.Color),
	).Scan(&category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if category == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE categories
	SET name = $3,
		color = $4,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		nullString(category.Color),
	).Scan(&category.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (r *categoryRepository) DeleteAndDetach(ctx context.Context, userID, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE tasks SET category_id = NULL, updated_at = NOW() WHERE category_id = $1 AND user_id = $2`,
		id, userID,
	); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}

	return tx.Commit(ctx)
}

func scanCategory(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Category, error) {
	var (
		category domain.Category
		color    *string
	)
	if err := row.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&color,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	if color != nil {
		category.Color = *color
	}
	return &category, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Manidoux41/blog-next/internal/domain"
	"github.com/Manidoux41/blog-next/internal/repository"
)

const createCategoriesTable = `
CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);
`

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCategoriesTable); err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO categories (id, name, slug, description)
VALUES (?, ?, ?, ?)`,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: categories.slug") {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, slug, description
FROM categories
WHERE slug = ?`,
		slug,
	)

	var category domain.Category
	if err := row.Scan(&category.ID, &category.Name, &category.Slug, &category.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &category, nil
}

// List returns every category with its computed post count.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.name, c.slug, c.description, COUNT(pc.post_id)
FROM categories c
LEFT JOIN post_categories pc ON pc.category_id = c.id
GROUP BY c.id, c.name, c.slug, c.description
ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.PostCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) ListByPost(ctx context.Context, postID string) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.name, c.slug, c.description
FROM categories c
JOIN post_categories pc ON pc.category_id = c.id
WHERE pc.post_id = ?
ORDER BY c.name ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("query categories by post: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Manidoux41/blog-next/internal/domain"
	"github.com/Manidoux41/blog-next/internal/repository"
)

const (
	createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	content TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	published INTEGER NOT NULL DEFAULT 0,
	featured INTEGER NOT NULL DEFAULT 0,
	sort_order INTEGER NOT NULL DEFAULT 0,
	author_id TEXT NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createPostCategoriesTable = `
CREATE TABLE IF NOT EXISTS post_categories (
	post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (post_id, category_id)
);
`

	postColumns = `id, title, slug, content, image_url, published, featured, sort_order, author_id, created_at, updated_at`
)

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createPostCategoriesTable); err != nil {
		return fmt.Errorf("create post_categories table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post, categoryIDs []string) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO posts (id, title, slug, content, image_url, published, featured, sort_order, author_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Slug,
		post.Content,
		post.ImageURL,
		boolToInt(post.Published),
		boolToInt(post.Featured),
		post.Order,
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: posts.slug") {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert post: %w", err)
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO post_categories (post_id, category_id) VALUES (?, ?)`,
			post.ID, categoryID,
		); err != nil {
			return fmt.Errorf("attach category %s: %w", categoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post create: %w", err)
	}
	return nil
}

// Update rewrites the post row and replaces its category association set
// with exactly the supplied ids; an empty slice detaches every category.
func (r *PostRepository) Update(ctx context.Context, post *domain.Post, categoryIDs []string) error {
	post.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE posts
SET title=?, slug=?, content=?, image_url=?, published=?, featured=?, updated_at=?
WHERE id=?`,
		post.Title,
		post.Slug,
		post.Content,
		post.ImageURL,
		boolToInt(post.Published),
		boolToInt(post.Featured),
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: posts.slug") {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update post: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("post update rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id=?`, post.ID); err != nil {
		return fmt.Errorf("detach categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO post_categories (post_id, category_id) VALUES (?, ?)`,
			post.ID, categoryID,
		); err != nil {
			return fmt.Errorf("attach category %s: %w", categoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post update: %w", err)
	}
	return nil
}

func (r *PostRepository) UpdateOrder(ctx context.Context, id string, order int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE posts
SET sort_order=?, updated_at=?
WHERE id=?`,
		order,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update post order: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("post order rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE id=?`,
		id,
	)
	return scanPost(row)
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE slug=?`,
		slug,
	)
	return scanPost(row)
}

func (r *PostRepository) List(ctx context.Context, featuredOnly bool) ([]domain.Post, error) {
	query := `
SELECT ` + postColumns + `
FROM posts`
	if featuredOnly {
		query += `
WHERE featured=1`
	}
	// manual ordering first, creation time breaks ties
	query += `
ORDER BY sort_order ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepository) ListPublishedByCategory(ctx context.Context, categoryID string) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.title, p.slug, p.content, p.image_url, p.published, p.featured, p.sort_order, p.author_id, p.created_at, p.updated_at
FROM posts p
JOIN post_categories pc ON pc.post_id = p.id
WHERE pc.category_id = ? AND p.published = 1
ORDER BY p.created_at DESC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("query posts by category: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func scanPost(scanner interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var (
		post      domain.Post
		published int
		featured  int
	)
	if err := scanner.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Content,
		&post.ImageURL,
		&published,
		&featured,
		&post.Order,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	post.Published = published != 0
	post.Featured = featured != 0
	return &post, nil
}

package repository

import (
	"context"

	"github.com/Manidoux41/blog-next/internal/domain"
)

// PostRepository exposes persistence operations for Post aggregates.
// Create and Update maintain the post/category join rows; Update replaces
// the association set with exactly the supplied category ids.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post, categoryIDs []string) error
	Update(ctx context.Context, post *domain.Post, categoryIDs []string) error
	UpdateOrder(ctx context.Context, id string, order int) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	List(ctx context.Context, featuredOnly bool) ([]domain.Post, error)
	ListPublishedByCategory(ctx context.Context, categoryID string) ([]domain.Post, error)
}

// CategoryRepository manages categories and their post associations.
type CategoryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, category *domain.Category) error
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	ListByPost(ctx context.Context, postID string) ([]domain.Category, error)
}

package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Manidoux41/blog-next/internal/domain"
	"github.com/Manidoux41/blog-next/internal/repository"
)

// PostInput carries validated form input for post creation and updates.
// Flags default to false when the form omits them.
type PostInput struct {
	Title       string
	Slug        string
	Content     string
	ImageURL    string
	Published   bool
	Featured    bool
	CategoryIDs []string
}

// OrderItem is one entry of a reorder batch.
type OrderItem struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// PostService coordinates post and category operations backed by repositories.
type PostService interface {
	CreatePost(ctx context.Context, authorID string, input PostInput) (*domain.Post, error)
	UpdatePost(ctx context.Context, id string, input PostInput) (*domain.Post, error)
	ReorderPosts(ctx context.Context, items []OrderItem) error
	ListPosts(ctx context.Context, featuredOnly bool) ([]domain.Post, error)
	ListPostsByCategory(ctx context.Context, slug string) ([]domain.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
}

func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository, users repository.UserRepository) PostService {
	return &postService{
		posts:      posts,
		categories: categories,
		users:      users,
	}
}

func validatePostInput(input PostInput) error {
	var missing []string
	if input.Title == "" {
		missing = append(missing, "title")
	}
	if input.Slug == "" {
		missing = append(missing, "slug")
	}
	if input.Content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func (s *postService) CreatePost(ctx context.Context, authorID string, input PostInput) (*domain.Post, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Slug:      input.Slug,
		Content:   input.Content,
		ImageURL:  input.ImageURL,
		Published: input.Published,
		Featured:  input.Featured,
		AuthorID:  authorID,
	}
	if err := s.posts.Create(ctx, post, input.CategoryIDs); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}

	if err := s.attach(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, id string, input PostInput) (*domain.Post, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:        id,
		Title:     input.Title,
		Slug:      input.Slug,
		Content:   input.Content,
		ImageURL:  input.ImageURL,
		Published: input.Published,
		Featured:  input.Featured,
	}
	if err := s.posts.Update(ctx, post, input.CategoryIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}

	updated, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ReorderPosts applies the order updates as independent concurrent writes.
// No transaction wraps the batch; when some items fail the applied ones
// stay applied and the failures are surfaced as a PartialFailure.
func (s *postService) ReorderPosts(ctx context.Context, items []OrderItem) error {
	failed := make([]bool, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item OrderItem) {
			defer wg.Done()
			if err := s.posts.UpdateOrder(ctx, item.ID, item.Order); err != nil {
				failed[i] = true
			}
		}(i, item)
	}
	wg.Wait()

	var failedIDs []string
	for i, item := range items {
		if failed[i] {
			failedIDs = append(failedIDs, item.ID)
		}
	}
	if len(failedIDs) > 0 {
		return &PartialFailure{FailedIDs: failedIDs}
	}
	return nil
}

func (s *postService) ListPosts(ctx context.Context, featuredOnly bool) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx, featuredOnly)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if err := s.attach(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *postService) ListPostsByCategory(ctx context.Context, slug string) ([]domain.Post, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	posts, err := s.posts.ListPublishedByCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if err := s.attach(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *postService) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.attach(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// attach resolves the author and category associations onto the post.
func (s *postService) attach(ctx context.Context, post *domain.Post) error {
	author, err := s.users.GetByID(ctx, post.AuthorID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	post.Author = sanitizeUser(author)

	categories, err := s.categories.ListByPost(ctx, post.ID)
	if err != nil {
		return err
	}
	post.Categories = categories
	return nil
}

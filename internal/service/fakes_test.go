package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Manidoux41/blog-next/internal/domain"
	"github.com/Manidoux41/blog-next/internal/repository"
)

// memStore backs the in-memory repository fakes used by the service tests.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	posts      map[string]*domain.Post
	categories map[string]*domain.Category
	joins      map[string][]string // post id -> category ids
	clock      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[string]*domain.User),
		posts:      make(map[string]*domain.Post),
		categories: make(map[string]*domain.Category),
		joins:      make(map[string][]string),
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so creation-time ordering is
// deterministic.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type fakeUserRepo struct {
	s *memStore
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	now := r.s.tick()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) SetConnected(ctx context.Context, id string, connected bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user, ok := r.s.users[id]; ok {
		user.IsConnected = connected
	}
	return nil
}

type fakePostRepo struct {
	s *memStore
}

func (r *fakePostRepo) Init(ctx context.Context) error { return nil }

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post, categoryIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.posts {
		if existing.Slug == post.Slug {
			return repository.ErrDuplicate
		}
	}
	now := r.s.tick()
	post.CreatedAt = now
	post.UpdatedAt = now
	copied := *post
	r.s.posts[post.ID] = &copied
	r.s.joins[post.ID] = append([]string(nil), categoryIDs...)
	return nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *domain.Post, categoryIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.posts[post.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.s.posts {
		if other.ID != post.ID && other.Slug == post.Slug {
			return repository.ErrDuplicate
		}
	}
	existing.Title = post.Title
	existing.Slug = post.Slug
	existing.Content = post.Content
	existing.ImageURL = post.ImageURL
	existing.Published = post.Published
	existing.Featured = post.Featured
	existing.UpdatedAt = r.s.tick()
	r.s.joins[post.ID] = append([]string(nil), categoryIDs...)
	return nil
}

func (r *fakePostRepo) UpdateOrder(ctx context.Context, id string, order int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post, ok := r.s.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	post.Order = order
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, post := range r.s.posts {
		if post.Slug == slug {
			copied := *post
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePostRepo) List(ctx context.Context, featuredOnly bool) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var posts []domain.Post
	for _, post := range r.s.posts {
		if featuredOnly && !post.Featured {
			continue
		}
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Order != posts[j].Order {
			return posts[i].Order < posts[j].Order
		}
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *fakePostRepo) ListPublishedByCategory(ctx context.Context, categoryID string) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var posts []domain.Post
	for id, post := range r.s.posts {
		if !post.Published {
			continue
		}
		for _, cid := range r.s.joins[id] {
			if cid == categoryID {
				posts = append(posts, *post)
				break
			}
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

type fakeCategoryRepo struct {
	s *memStore
}

func (r *fakeCategoryRepo) Init(ctx context.Context) error { return nil }

func (r *fakeCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Slug == category.Slug {
			return repository.ErrDuplicate
		}
	}
	copied := *category
	r.s.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, category := range r.s.categories {
		if category.Slug == slug {
			copied := *category
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var categories []domain.Category
	for id, category := range r.s.categories {
		copied := *category
		for _, ids := range r.s.joins {
			for _, cid := range ids {
				if cid == id {
					copied.PostCount++
				}
			}
		}
		categories = append(categories, copied)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *fakeCategoryRepo) ListByPost(ctx context.Context, postID string) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var categories []domain.Category
	for _, cid := range r.s.joins[postID] {
		if category, ok := r.s.categories[cid]; ok {
			categories = append(categories, *category)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manidoux41/blog-next/internal/domain"
	"github.com/Manidoux41/blog-next/internal/repository"
)

type repos struct {
	db         *sql.DB
	users      repository.UserRepository
	posts      repository.PostRepository
	categories repository.CategoryRepository
	author     *domain.User
}

func newRepos(t *testing.T) *repos {
	t.Helper()
	ctx := context.Background()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := &repos{
		db:         db,
		users:      NewUserRepository(db),
		posts:      NewPostRepository(db),
		categories: NewCategoryRepository(db),
	}
	require.NoError(t, r.users.Init(ctx))
	require.NoError(t, r.categories.Init(ctx))
	require.NoError(t, r.posts.Init(ctx))

	r.author = &domain.User{
		ID:           uuid.NewString(),
		Email:        "author@example.com",
		Name:         "Author",
		PasswordHash: "x",
		Role:         domain.RoleUser,
	}
	require.NoError(t, r.users.Create(ctx, r.author))
	return r
}

func (r *repos) newPost(t *testing.T, slug string, published bool, categoryIDs ...string) *domain.Post {
	t.Helper()
	post := &domain.Post{
		ID:        uuid.NewString(),
		Title:     slug,
		Slug:      slug,
		Content:   "content",
		Published: published,
		AuthorID:  r.author.ID,
	}
	require.NoError(t, r.posts.Create(context.Background(), post, categoryIDs))
	// keep creation times distinct for ordering assertions
	time.Sleep(5 * time.Millisecond)
	return post
}

func TestUserUniqueEmail(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	err := r.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        "author@example.com",
		Name:         "Other",
		PasswordHash: "x",
		Role:         domain.RoleUser,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = r.users.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserSetConnected(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	require.NoError(t, r.users.SetConnected(ctx, r.author.ID, true))
	user, err := r.users.GetByID(ctx, r.author.ID)
	require.NoError(t, err)
	assert.True(t, user.IsConnected)

	require.NoError(t, r.users.SetConnected(ctx, r.author.ID, false))
	user, err = r.users.GetByID(ctx, r.author.ID)
	require.NoError(t, err)
	assert.False(t, user.IsConnected)
}

func TestPostUniqueSlug(t *testing.T) {
	r := newRepos(t)

	r.newPost(t, "hello", true)
	err := r.posts.Create(context.Background(), &domain.Post{
		ID:       uuid.NewString(),
		Title:    "again",
		Slug:     "hello",
		Content:  "c",
		AuthorID: r.author.ID,
	}, nil)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestPostUpdateReplacesCategories(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	tech := &domain.Category{ID: uuid.NewString(), Name: "Tech", Slug: "tech"}
	travel := &domain.Category{ID: uuid.NewString(), Name: "Travel", Slug: "travel"}
	require.NoError(t, r.categories.Create(ctx, tech))
	require.NoError(t, r.categories.Create(ctx, travel))

	post := r.newPost(t, "hello", true, tech.ID, travel.ID)

	attached, err := r.categories.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, attached, 2)

	post.Title = "updated"
	require.NoError(t, r.posts.Update(ctx, post, []string{travel.ID}))

	attached, err = r.categories.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, attached, 1)
	assert.Equal(t, "travel", attached[0].Slug)

	require.NoError(t, r.posts.Update(ctx, post, nil))
	attached, err = r.categories.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, attached)
}

func TestPostUpdateUnknownID(t *testing.T) {
	r := newRepos(t)

	err := r.posts.Update(context.Background(), &domain.Post{
		ID:      "missing",
		Title:   "t",
		Slug:    "t",
		Content: "c",
	}, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, r.posts.UpdateOrder(context.Background(), "missing", 1), repository.ErrNotFound)
}

func TestPostListOrdering(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	first := r.newPost(t, "first", true)
	second := r.newPost(t, "second", true)
	third := r.newPost(t, "third", true)

	require.NoError(t, r.posts.UpdateOrder(ctx, third.ID, 1))
	require.NoError(t, r.posts.UpdateOrder(ctx, first.ID, 2))
	require.NoError(t, r.posts.UpdateOrder(ctx, second.ID, 2))

	posts, err := r.posts.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	// explicit order wins, creation time breaks the tie
	assert.Equal(t, "third", posts[0].Slug)
	assert.Equal(t, "first", posts[1].Slug)
	assert.Equal(t, "second", posts[2].Slug)
}

func TestPostListFeaturedOnly(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	featured := &domain.Post{
		ID:       uuid.NewString(),
		Title:    "f",
		Slug:     "f",
		Content:  "c",
		Featured: true,
		AuthorID: r.author.ID,
	}
	require.NoError(t, r.posts.Create(ctx, featured, nil))
	r.newPost(t, "plain", true)

	posts, err := r.posts.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "f", posts[0].Slug)
}

func TestListPublishedByCategory(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	tech := &domain.Category{ID: uuid.NewString(), Name: "Tech", Slug: "tech"}
	require.NoError(t, r.categories.Create(ctx, tech))

	r.newPost(t, "p1", true, tech.ID)
	r.newPost(t, "p2", true, tech.ID)
	r.newPost(t, "p3", true, tech.ID)
	r.newPost(t, "draft", false, tech.ID)

	posts, err := r.posts.ListPublishedByCategory(ctx, tech.ID)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "p3", posts[0].Slug)
	assert.Equal(t, "p2", posts[1].Slug)
	assert.Equal(t, "p1", posts[2].Slug)
}

func TestCategoryListWithCounts(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	tech := &domain.Category{ID: uuid.NewString(), Name: "Tech", Slug: "tech"}
	travel := &domain.Category{ID: uuid.NewString(), Name: "Travel", Slug: "travel"}
	require.NoError(t, r.categories.Create(ctx, tech))
	require.NoError(t, r.categories.Create(ctx, travel))

	r.newPost(t, "p1", true, tech.ID)
	r.newPost(t, "p2", true, tech.ID)

	categories, err := r.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Tech", categories[0].Name)
	assert.Equal(t, 2, categories[0].PostCount)
	assert.Equal(t, 0, categories[1].PostCount)
}

func TestGetBySlugRoundTrip(t *testing.T) {
	r := newRepos(t)

	created := r.newPost(t, "round-trip", true)
	fetched, err := r.posts.GetBySlug(context.Background(), "round-trip")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Content, fetched.Content)

	_, err = r.posts.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// Package seed populates a fresh database with an admin author, a handful
// of categories and sample posts so the site renders on first run.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Manidoux41/blog-next/internal/domain"
	"github.com/Manidoux41/blog-next/internal/repository"
)

type categorySeed struct {
	name        string
	slug        string
	description string
}

type postSeed struct {
	title        string
	slug         string
	content      string
	imageURL     string
	published    bool
	featured     bool
	categorySlug string
}

var categorySeeds = []categorySeed{
	{"Technology", "technology", "Latest tech news and reviews"},
	{"Travel", "travel", "Travel guides and experiences"},
	{"Food", "food", "Recipes and culinary adventures"},
}

var postSeeds = []postSeed{
	{
		title:        "The Future of AI Technology",
		slug:         "future-of-ai-technology",
		content:      "<h2>The Rise of Artificial Intelligence</h2><p>AI is transforming every industry...</p>",
		imageURL:     "https://picsum.photos/seed/ai/800/600",
		published:    true,
		featured:     true,
		categorySlug: "technology",
	},
	{
		title:        "Hidden Gems of Paris",
		slug:         "hidden-gems-paris",
		content:      "<h2>Discovering Paris's Secret Spots</h2><p>Beyond the Eiffel Tower...</p>",
		imageURL:     "https://picsum.photos/seed/paris/800/600",
		published:    true,
		featured:     true,
		categorySlug: "travel",
	},
	{
		title:        "Traditional Italian Pasta Recipes",
		slug:         "italian-pasta-recipes",
		content:      "<h2>Authentic Pasta Making</h2><p>Secret recipes passed down generations...</p>",
		imageURL:     "https://picsum.photos/seed/pasta/800/600",
		published:    true,
		featured:     true,
		categorySlug: "food",
	},
	{
		title:        "Draft: Upcoming Tech Trends",
		slug:         "upcoming-tech-trends",
		content:      "<h2>Tech Predictions</h2><p>Draft content...</p>",
		imageURL:     "https://picsum.photos/seed/tech/800/600",
		categorySlug: "technology",
	},
}

// Run seeds the admin author, categories and sample posts. It is a no-op
// when the admin account already exists.
func Run(ctx context.Context, logger *logrus.Logger, users repository.UserRepository, posts repository.PostRepository, categories repository.CategoryRepository, adminEmail, adminPassword string) error {
	if adminPassword == "" {
		return fmt.Errorf("seed admin password is required")
	}

	if _, err := users.GetByEmail(ctx, adminEmail); err == nil {
		logger.Infof("seed: admin %s already present, skipping", adminEmail)
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        adminEmail,
		Name:         "Test Author",
		Image:        "https://i.pravatar.cc/150?u=" + adminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	categoryIDs := make(map[string]string, len(categorySeeds))
	for _, cs := range categorySeeds {
		category := &domain.Category{
			ID:          uuid.NewString(),
			Name:        cs.name,
			Slug:        cs.slug,
			Description: cs.description,
		}
		if err := categories.Create(ctx, category); err != nil {
			return fmt.Errorf("seed category %s: %w", cs.slug, err)
		}
		categoryIDs[cs.slug] = category.ID
	}

	for _, ps := range postSeeds {
		post := &domain.Post{
			ID:        uuid.NewString(),
			Title:     ps.title,
			Slug:      ps.slug,
			Content:   ps.content,
			ImageURL:  ps.imageURL,
			Published: ps.published,
			Featured:  ps.featured,
			AuthorID:  admin.ID,
		}
		if err := posts.Create(ctx, post, []string{categoryIDs[ps.categorySlug]}); err != nil {
			return fmt.Errorf("seed post %s: %w", ps.slug, err)
		}
	}

	logger.Infof("seed: created admin, %d categories, %d posts", len(categorySeeds), len(postSeeds))
	return nil
}

package seed

import (
	"context"
	_ "embed"
	"fmt"

	"agora/internal/models"
	"agora/internal/repository"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yml
var builtInCategories []byte

type categoryFile struct {
	Categories []struct {
		Slug        string `yaml:"slug"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Icon        string `yaml:"icon"`
		MinRole     string `yaml:"min_role"`
		SortOrder   int    `yaml:"sort_order"`
	} `yaml:"categories"`
}

// ParseCategories decodes a category list in the categories.yml format.
func ParseCategories(raw []byte) ([]models.Category, error) {
	var file categoryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	out := make([]models.Category, 0, len(file.Categories))
	for _, c := range file.Categories {
		role, ok := models.ParseRole(c.MinRole)
		if !ok {
			return nil, fmt.Errorf("category %s: unknown min_role %q", c.Slug, c.MinRole)
		}
		if c.Slug == "" || c.Name == "" {
			return nil, fmt.Errorf("category entry is missing a slug or name")
		}
		out = append(out, models.Category{
			Slug:        c.Slug,
			Name:        c.Name,
			Description: c.Description,
			Icon:        c.Icon,
			MinRole:     role,
			SortOrder:   c.SortOrder,
		})
	}
	return out, nil
}

// BuiltInCategories returns the boards every installation starts with.
func BuiltInCategories() ([]models.Category, error) {
	return ParseCategories(builtInCategories)
}

// Categories upserts the built-in boards. Running it twice is a no-op.
func Categories(ctx context.Context, repo repository.CategoryRepository) error {
	categories, err := BuiltInCategories()
	if err != nil {
		return err
	}
	for i := range categories {
		if err := repo.Upsert(ctx, &categories[i]); err != nil {
			return fmt.Errorf("seed category %s: %w", categories[i].Slug, err)
		}
	}
	return nil
}

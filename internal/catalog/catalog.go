// Package catalog loads recipe catalogs from YAML and writes them to the
// store through the Manager operations.
//
// A catalog names every ingredient once under a local key and lets recipes
// refer to those keys:
//
//	ingredients:
//	  flour: Flour
//	  water: Water
//	recipes:
//	  - name: Bread
//	    instructions: Knead and bake.
//	    elements:
//	      - ingredient: flour
//	        amount: 500
//	        unit: g
//	      - ingredient: water
//	        amount: 300
//	        unit: ml
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

// Catalog is the decoded YAML document.
type Catalog struct {
	// Ingredients maps a catalog-local key to the ingredient name.
	Ingredients map[string]string `yaml:"ingredients"`
	Recipes     []RecipeEntry     `yaml:"recipes"`
}

// RecipeEntry is one recipe of a catalog.
type RecipeEntry struct {
	Name         string         `yaml:"name"`
	Description  *string        `yaml:"description,omitempty"`
	Instructions *string        `yaml:"instructions,omitempty"`
	Image        *string        `yaml:"image,omitempty"`
	Elements     []ElementEntry `yaml:"elements,omitempty"`
}

// ElementEntry references an ingredient key with its quantity.
type ElementEntry struct {
	Ingredient string  `yaml:"ingredient"`
	Amount     float64 `yaml:"amount"`
	Unit       *string `yaml:"unit,omitempty"`
}

// Seeder is the subset of *neorecipe.Manager used for seeding.
type Seeder interface {
	EnsureIngredient(ctx context.Context, name string) (*models.Ingredient, error)
	CreateRecipe(ctx context.Context, in models.RecipeInput) (*models.Recipe, error)
	AddIngredientToRecipe(ctx context.Context, recipeID string, element models.ElementInput) (*models.Element, error)
}

// Summary counts what Seed wrote.
type Summary struct {
	Ingredients int `json:"ingredients"`
	Recipes     int `json:"recipes"`
	Elements    int `json:"elements"`
}

// LoadFile parses the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a catalog.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every element references a declared ingredient and
// that every name is present.
func (c *Catalog) Validate() error {
	var errs []error
	for key, name := range c.Ingredients {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("ingredient %q has no name", key))
		}
	}
	for i, r := range c.Recipes {
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, fmt.Errorf("recipe #%d has no name", i+1))
		}
		for _, e := range r.Elements {
			if _, ok := c.Ingredients[e.Ingredient]; !ok {
				errs = append(errs, fmt.Errorf("recipe %q uses unknown ingredient %q", r.Name, e.Ingredient))
			}
		}
	}
	return errors.Join(errs...)
}

// Seed writes the catalog through s. Ingredients are ensured by name, so
// seeding twice does not duplicate them; recipes are always created. The
// catalog is validated before the first write.
func Seed(ctx context.Context, s Seeder, c *Catalog, logger *slog.Logger) (Summary, error) {
	var sum Summary
	if err := c.Validate(); err != nil {
		return sum, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]string, 0, len(c.Ingredients))
	for key := range c.Ingredients {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	ids := make(map[string]string, len(keys))
	for _, key := range keys {
		in, err := s.EnsureIngredient(ctx, c.Ingredients[key])
		if err != nil {
			return sum, fmt.Errorf("ingredient %q: %w", key, err)
		}
		ids[key] = in.ID
		sum.Ingredients++
		logger.Debug("ingredient ensured", "key", key, "id", in.ID)
	}

	for _, entry := range c.Recipes {
		recipe, err := s.CreateRecipe(ctx, models.RecipeInput{
			Name:         entry.Name,
			Description:  entry.Description,
			Instructions: entry.Instructions,
			Image:        entry.Image,
		})
		if err != nil {
			return sum, fmt.Errorf("recipe %q: %w", entry.Name, err)
		}
		sum.Recipes++

		for _, e := range entry.Elements {
			_, err := s.AddIngredientToRecipe(ctx, recipe.ID, models.ElementInput{
				ID:     ids[e.Ingredient],
				Amount: e.Amount,
				Unit:   e.Unit,
			})
			if err != nil {
				return sum, fmt.Errorf("recipe %q element %q: %w", entry.Name, e.Ingredient, err)
			}
			sum.Elements++
		}
		logger.Debug("recipe seeded", "id", recipe.ID, "name", entry.Name, "elements", len(entry.Elements))
	}

	logger.Info("catalog seeded",
		"ingredients", sum.Ingredients,
		"recipes", sum.Recipes,
		"elements", sum.Elements)
	return sum, nil
}

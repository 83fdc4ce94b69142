package neorecipe

import (
	"context"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

// IngredientRepository stores Ingredient nodes.
type IngredientRepository struct {
	nodes *Repository[models.Ingredient]
}

// NewIngredientRepository creates an IngredientRepository over runner.
func NewIngredientRepository(runner DBRunner) (*IngredientRepository, error) {
	nodes, err := NewRepository[models.Ingredient](runner)
	if err != nil {
		return nil, err
	}
	return &IngredientRepository{nodes: nodes}, nil
}

// FindByID returns the ingredient with the given id.
func (r *IngredientRepository) FindByID(ctx context.Context, id string) (*models.Ingredient, error) {
	return r.nodes.FindByID(ctx, "getIngredient", id)
}

// FindAll returns every ingredient that has a name.
func (r *IngredientRepository) FindAll(ctx context.Context) ([]models.Ingredient, error) {
	found, err := r.nodes.FindAll(ctx, "getAllIngredients")
	if err != nil {
		return nil, err
	}
	ingredients := make([]models.Ingredient, 0, len(found))
	for _, in := range found {
		ingredients = append(ingredients, *in)
	}
	return ingredients, nil
}

// Create inserts a new ingredient.
func (r *IngredientRepository) Create(ctx context.Context, name string) (*models.Ingredient, error) {
	return r.nodes.Create(ctx, "createIngredient", &models.Ingredient{Name: name})
}

// Ensure returns the ingredient with exactly this name, creating it when no
// such node exists.
func (r *IngredientRepository) Ensure(ctx context.Context, name string) (*models.Ingredient, error) {
	return r.nodes.Merge(ctx, "ensureIngredient", &models.Ingredient{Name: name})
}

// Update renames an ingredient.
func (r *IngredientRepository) Update(ctx context.Context, id, name string) (*models.Ingredient, error) {
	return r.nodes.Update(ctx, "updateIngredient", id, &models.Ingredient{Name: name})
}

// Delete removes an ingredient and every USES edge pointing at it.
func (r *IngredientRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.nodes.Delete(ctx, "deleteIngredient", id)
}

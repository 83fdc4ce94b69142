package neorecipe

import (
	"context"
	"log/slog"
	"time"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

// Verifier is implemented by gateways that can check connectivity.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Manager is the entry point of the catalog. It exposes the API-facing
// operations and delegates each to the repository owning the entity. Every
// operation issues exactly one query and keeps no state between calls, so a
// Manager is safe for concurrent use.
type Manager struct {
	runner      DBRunner
	logger      *slog.Logger
	ingredients *IngredientRepository
	recipes     *RecipeRepository
	elements    *ElementRepository
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for operation tracing.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager issuing its queries through runner.
func NewManager(runner DBRunner, opts ...ManagerOption) (*Manager, error) {
	ingredients, err := NewIngredientRepository(runner)
	if err != nil {
		return nil, err
	}
	recipes, err := NewRecipeRepository(runner)
	if err != nil {
		return nil, err
	}
	elements, err := NewElementRepository(runner)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		runner:      runner,
		logger:      slog.Default(),
		ingredients: ingredients,
		recipes:     recipes,
		elements:    elements,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Verify checks gateway connectivity. Runners that cannot verify are assumed
// reachable.
func (m *Manager) Verify(ctx context.Context) error {
	if v, ok := m.runner.(Verifier); ok {
		return v.Verify(ctx)
	}
	return nil
}

// GetIngredient returns one ingredient.
func (m *Manager) GetIngredient(ctx context.Context, id string) (*models.Ingredient, error) {
	defer m.trace("getIngredient", time.Now(), "id", id)
	return observe(m.ingredients.FindByID(ctx, id))
}

// GetAllIngredients returns every named ingredient.
func (m *Manager) GetAllIngredients(ctx context.Context) ([]models.Ingredient, error) {
	defer m.trace("getAllIngredients", time.Now())
	return observe(m.ingredients.FindAll(ctx))
}

// CreateIngredient inserts an ingredient.
func (m *Manager) CreateIngredient(ctx context.Context, name string) (*models.Ingredient, error) {
	defer m.trace("createIngredient", time.Now(), "name", name)
	return observe(m.ingredients.Create(ctx, name))
}

// EnsureIngredient returns the ingredient named name, creating it if needed.
func (m *Manager) EnsureIngredient(ctx context.Context, name string) (*models.Ingredient, error) {
	defer m.trace("ensureIngredient", time.Now(), "name", name)
	return observe(m.ingredients.Ensure(ctx, name))
}

// UpdateIngredient renames an ingredient.
func (m *Manager) UpdateIngredient(ctx context.Context, id, name string) (*models.Ingredient, error) {
	defer m.trace("updateIngredient", time.Now(), "id", id)
	return observe(m.ingredients.Update(ctx, id, name))
}

// DeleteIngredient removes an ingredient and detaches it from every recipe.
func (m *Manager) DeleteIngredient(ctx context.Context, id string) (bool, error) {
	defer m.trace("deleteIngredient", time.Now(), "id", id)
	return observe(m.ingredients.Delete(ctx, id))
}

// GetRecipe returns one recipe with its elements.
func (m *Manager) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	defer m.trace("getRecipe", time.Now(), "id", id)
	return observe(m.recipes.FindByID(ctx, id))
}

// GetAllRecipes returns every recipe with its elements.
func (m *Manager) GetAllRecipes(ctx context.Context) ([]models.Recipe, error) {
	defer m.trace("getAllRecipes", time.Now())
	return observe(m.recipes.FindAll(ctx))
}

// GetRecipesByIngredients ranks every recipe against the available
// ingredients, fewest missing first.
func (m *Manager) GetRecipesByIngredients(ctx context.Context, ingredientIDs []string) ([]models.RankedRecipe, error) {
	defer m.trace("getRecipesByIngredients", time.Now(), "candidates", len(ingredientIDs))
	return observe(m.recipes.FindByIngredients(ctx, ingredientIDs))
}

// CreateRecipe inserts a recipe without elements.
func (m *Manager) CreateRecipe(ctx context.Context, in models.RecipeInput) (*models.Recipe, error) {
	defer m.trace("createRecipe", time.Now(), "name", in.Name)
	return observe(m.recipes.Create(ctx, in))
}

// UpdateRecipe replaces a recipe's fields.
func (m *Manager) UpdateRecipe(ctx context.Context, id string, in models.RecipeInput) (*models.Recipe, error) {
	defer m.trace("updateRecipe", time.Now(), "id", id)
	return observe(m.recipes.Update(ctx, id, in))
}

// DeleteRecipe removes a recipe and its elements.
func (m *Manager) DeleteRecipe(ctx context.Context, id string) (bool, error) {
	defer m.trace("deleteRecipe", time.Now(), "id", id)
	return observe(m.recipes.Delete(ctx, id))
}

// RecipeGraph returns a recipe and its ingredients as nodes and edges.
func (m *Manager) RecipeGraph(ctx context.Context, id string) (*models.GraphResult, error) {
	defer m.trace("recipeGraph", time.Now(), "id", id)
	return observe(m.recipes.Graph(ctx, id))
}

// AddIngredientToRecipe links an ingredient (element.ID) to a recipe.
func (m *Manager) AddIngredientToRecipe(ctx context.Context, recipeID string, element models.ElementInput) (*models.Element, error) {
	defer m.trace("addIngredientToRecipe", time.Now(), "recipeId", recipeID, "ingredientId", element.ID)
	return observe(m.elements.Add(ctx, recipeID, element))
}

// RemoveIngredientFromRecipe deletes an element by its edge id.
func (m *Manager) RemoveIngredientFromRecipe(ctx context.Context, elementID string) (bool, error) {
	defer m.trace("removeIngredientFromRecipe", time.Now(), "elementId", elementID)
	return observe(m.elements.Remove(ctx, elementID))
}

// UpdateIngredientInRecipe changes the amount and unit of an element
// (element.ID is the edge id).
func (m *Manager) UpdateIngredientInRecipe(ctx context.Context, element models.ElementInput) (*models.Element, error) {
	defer m.trace("updateIngredientInRecipe", time.Now(), "elementId", element.ID)
	return observe(m.elements.Update(ctx, element))
}

func (m *Manager) trace(op string, start time.Time, attrs ...any) {
	m.logger.Debug("operation completed",
		append([]any{"op", op, "duration", time.Since(start).String()}, attrs...)...)
}

// observe counts failed operations by code and passes the result through.
func observe[T any](v T, err error) (T, error) {
	if err != nil {
		var op string
		if e, ok := err.(*Error); ok {
			op = e.Op
		}
		observeOperationError(op, err)
	}
	return v, err
}

package neorecipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

func newRecipeRepo(t *testing.T, runner *fakeRunner) *RecipeRepository {
	t.Helper()
	repo, err := NewRecipeRepository(runner)
	require.NoError(t, err)
	return repo
}

func TestRecipeRepository_FindByID(t *testing.T) {
	runner := (&fakeRunner{}).returns(
		recipeRecord(1, "Bread", int64(10), "Flour", int64(100), 500.0, "g"),
		recipeRecord(1, "Bread", int64(11), "Water", int64(101), 300.0, nil),
	)

	recipe, err := newRecipeRepo(t, runner).FindByID(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "1", recipe.ID)
	assert.Equal(t, "Bread", recipe.Name)
	require.Len(t, recipe.Elements, 2)
	assert.Equal(t, "Flour", recipe.Elements[0].Ingredient.Name)
	assert.Equal(t, "10", recipe.Elements[0].Ingredient.ID)
	require.NotNil(t, recipe.Elements[0].Unit)
	assert.Equal(t, "g", *recipe.Elements[0].Unit)
	assert.Nil(t, recipe.Elements[1].Unit)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, FindRecipeByID, runner.calls[0].query)
	assert.Equal(t, int64(1), runner.calls[0].params["id"])
}

func TestRecipeRepository_FindByIDWithoutElements(t *testing.T) {
	runner := (&fakeRunner{}).returns(recipeRecord(4, "Water", nil, nil, nil, nil, nil))

	recipe, err := newRecipeRepo(t, runner).FindByID(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, "Water", recipe.Name)
	assert.Empty(t, recipe.Elements)
}

func TestRecipeRepository_FindByIDErrors(t *testing.T) {
	_, err := newRecipeRepo(t, &fakeRunner{}).FindByID(context.Background(), "x1")
	assert.True(t, errors.Is(err, ErrInvalidID))

	_, err = newRecipeRepo(t, (&fakeRunner{}).returns()).FindByID(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrNotFound))

	malformed := (&fakeRunner{}).returns(record(colRecipeName, "no id"))
	_, err = newRecipeRepo(t, malformed).FindByID(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResult))
	assert.Equal(t, "getRecipe", err.(*Error).Op)
}

func TestRecipeRepository_FindAll(t *testing.T) {
	runner := (&fakeRunner{}).returns(
		recipeRecord(1, "Bread", int64(10), "Flour", int64(100), 500.0, nil),
		recipeRecord(2, "Water", nil, nil, nil, nil, nil),
		recipeRecord(3, "Salad", int64(12), "Lettuce", int64(102), 1.0, nil),
	)

	recipes, err := newRecipeRepo(t, runner).FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 3)
	assert.Equal(t, "Water", recipes[1].Name)
	assert.Empty(t, recipes[1].Elements)
	assert.Equal(t, FindAllRecipes, runner.calls[0].query)
}

func TestRecipeRepository_FindByIngredients(t *testing.T) {
	// Ingredients A=1, B=2, C=3. R1 uses A and B, R2 uses A, B and C.
	runner := (&fakeRunner{}).returns(
		recipeRecord(20, "R2", int64(1), "A", int64(200), 1.0, nil),
		recipeRecord(20, "R2", int64(2), "B", int64(201), 1.0, nil),
		recipeRecord(20, "R2", int64(3), "C", int64(202), 3.0, nil),
		recipeRecord(10, "R1", int64(1), "A", int64(100), 2.0, nil),
		recipeRecord(10, "R1", int64(2), "B", int64(101), 1.0, nil),
	)

	ranked, err := newRecipeRepo(t, runner).FindByIngredients(context.Background(), []string{"1", "2"})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "R1", ranked[0].Name)
	assert.Equal(t, 0, ranked[0].MissingIngredientCount)
	assert.Equal(t, 2, ranked[0].IngredientCount)
	assert.Equal(t, "R2", ranked[1].Name)
	assert.Equal(t, 1, ranked[1].MissingIngredientCount)
	assert.Equal(t, 3, ranked[1].IngredientCount)
	assert.Len(t, runner.calls, 1)
}

func TestRecipeRepository_FindByIngredientsEmptySet(t *testing.T) {
	runner := (&fakeRunner{}).returns(
		recipeRecord(10, "R1", int64(1), "A", int64(100), 2.0, nil),
		recipeRecord(11, "Empty", nil, nil, nil, nil, nil),
	)

	ranked, err := newRecipeRepo(t, runner).FindByIngredients(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Empty", ranked[0].Name)
	assert.Equal(t, 1, ranked[1].MissingIngredientCount)
}

func TestRecipeRepository_FindByIngredientsInvalidID(t *testing.T) {
	runner := &fakeRunner{}

	_, err := newRecipeRepo(t, runner).FindByIngredients(context.Background(), []string{"1", "two"})
	assert.True(t, errors.Is(err, ErrInvalidID))
	assert.Empty(t, runner.calls)
}

func TestRecipeRepository_Create(t *testing.T) {
	runner := (&fakeRunner{}).returns(record("n", node(50, "Recipe", map[string]any{
		"name":         "Soup",
		"instructions": "boil",
	})))

	recipe, err := newRecipeRepo(t, runner).Create(context.Background(), models.RecipeInput{
		Name:         "Soup",
		Instructions: strPtr("boil"),
	})
	require.NoError(t, err)
	assert.Equal(t, "50", recipe.ID)
	assert.Equal(t, "Soup", recipe.Name)
	require.NotNil(t, recipe.Instructions)
	assert.Nil(t, recipe.Description)
	assert.NotNil(t, recipe.Elements)
	assert.Empty(t, recipe.Elements)
}

func TestRecipeRepository_Update(t *testing.T) {
	runner := (&fakeRunner{}).returns(
		recipeRecord(5, "Stew", int64(1), "Beef", int64(70), 1.0, "kg"),
	)

	recipe, err := newRecipeRepo(t, runner).Update(context.Background(), "5", models.RecipeInput{
		Name:        "Stew",
		Description: strPtr("slow"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Stew", recipe.Name)
	assert.Len(t, recipe.Elements, 1)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, UpdateRecipeByID, runner.calls[0].query)
	assert.Equal(t, map[string]any{"name": "Stew", "description": "slow"}, runner.calls[0].params["props"])
}

func TestRecipeRepository_UpdateMissing(t *testing.T) {
	_, err := newRecipeRepo(t, (&fakeRunner{}).returns()).Update(context.Background(), "5", models.RecipeInput{Name: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecipeRepository_Delete(t *testing.T) {
	ok, err := newRecipeRepo(t, (&fakeRunner{}).returns(record("deleted", int64(1)))).Delete(context.Background(), "5")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = newRecipeRepo(t, (&fakeRunner{}).returns(record("deleted", int64(0)))).Delete(context.Background(), "5")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecipeRepository_Graph(t *testing.T) {
	recipe := node(1, "Recipe", map[string]any{"name": "Bread"})
	flour := node(10, "Ingredient", map[string]any{"name": "Flour"})
	water := node(11, "Ingredient", map[string]any{"name": "Water"})

	runner := (&fakeRunner{}).returns(
		record("r", recipe, "e", uses(100, 1, 10, map[string]any{"amount": 500.0}), "i", flour),
		record("r", recipe, "e", uses(101, 1, 11, map[string]any{"amount": 300.0}), "i", water),
		record("r", recipe, "e", uses(101, 1, 11, map[string]any{"amount": 300.0}), "i", water),
	)

	graph, err := newRecipeRepo(t, runner).Graph(context.Background(), "1")
	require.NoError(t, err)

	require.Len(t, graph.Nodes, 3)
	assert.Equal(t, "1", graph.Nodes[0].ID)
	assert.Equal(t, []string{"Recipe"}, graph.Nodes[0].Labels)
	assert.Equal(t, "10", graph.Nodes[1].ID)

	require.Len(t, graph.Edges, 2)
	assert.Equal(t, "100", graph.Edges[0].ID)
	assert.Equal(t, "1", graph.Edges[0].Source)
	assert.Equal(t, "10", graph.Edges[0].Target)
	assert.Equal(t, "USES", graph.Edges[0].Type)
}

func TestRecipeRepository_GraphWithoutElements(t *testing.T) {
	runner := (&fakeRunner{}).returns(
		record("r", node(1, "Recipe", map[string]any{"name": "Plain"}), "e", nil, "i", nil),
	)

	graph, err := newRecipeRepo(t, runner).Graph(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, graph.Nodes, 1)
	assert.Empty(t, graph.Edges)
}

func TestRecipeRepository_GraphNotFound(t *testing.T) {
	_, err := newRecipeRepo(t, (&fakeRunner{}).returns()).Graph(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecipeRepository_UpstreamFailure(t *testing.T) {
	runner := (&fakeRunner{}).fails(errors.New("server unavailable"))

	_, err := newRecipeRepo(t, runner).FindAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamQuery))
	assert.Equal(t, "getAllRecipes", err.(*Error).Op)
}

package neorecipe

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

// RecipeRepository stores Recipe nodes and reads them back together with
// their elements.
type RecipeRepository struct {
	runner DBRunner
	nodes  *Repository[models.Recipe]
}

// NewRecipeRepository creates a RecipeRepository over runner.
func NewRecipeRepository(runner DBRunner) (*RecipeRepository, error) {
	nodes, err := NewRepository[models.Recipe](runner)
	if err != nil {
		return nil, err
	}
	return &RecipeRepository{runner: runner, nodes: nodes}, nil
}

// FindByID returns the recipe with its elements.
func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	const op = "getRecipe"
	recipeID, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	return r.one(ctx, op, id, FindRecipeByID, map[string]any{"id": recipeID})
}

// FindAll returns every recipe with its elements.
func (r *RecipeRepository) FindAll(ctx context.Context) ([]models.Recipe, error) {
	return r.all(ctx, "getAllRecipes")
}

// FindByIngredients ranks every recipe by how well ingredientIDs cover it.
// See RankRecipes for the ordering.
func (r *RecipeRepository) FindByIngredients(ctx context.Context, ingredientIDs []string) ([]models.RankedRecipe, error) {
	const op = "getRecipesByIngredients"

	candidates := make([]string, 0, len(ingredientIDs))
	for _, id := range ingredientIDs {
		n, err := parseID(op, id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, formatID(n))
	}

	recipes, err := r.all(ctx, op)
	if err != nil {
		return nil, err
	}
	return RankRecipes(recipes, candidates), nil
}

// Create inserts a new recipe without elements.
func (r *RecipeRepository) Create(ctx context.Context, in models.RecipeInput) (*models.Recipe, error) {
	recipe := in.Recipe()
	return r.nodes.Create(ctx, "createRecipe", &recipe)
}

// Update replaces the recipe's fields. Optional fields left nil are cleared.
// The returned recipe carries its current elements.
func (r *RecipeRepository) Update(ctx context.Context, id string, in models.RecipeInput) (*models.Recipe, error) {
	const op = "updateRecipe"
	recipeID, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	recipe := in.Recipe()
	params := map[string]any{
		"id":    recipeID,
		"props": encodeEntity(r.nodes.meta, &recipe),
	}
	return r.one(ctx, op, id, UpdateRecipeByID, params)
}

// Delete removes a recipe and all of its elements.
func (r *RecipeRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.nodes.Delete(ctx, "deleteRecipe", id)
}

// Graph returns the recipe, its USES edges and their ingredients as a generic
// graph. Nodes and edges appear once each even when several rows carry them.
func (r *RecipeRepository) Graph(ctx context.Context, id string) (*models.GraphResult, error) {
	const op = "recipeGraph"
	recipeID, err := parseID(op, id)
	if err != nil {
		return nil, err
	}

	result, err := r.runner.Run(ctx, RecipeGraph, map[string]any{"id": recipeID})
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(result.Records) == 0 {
		return nil, newError(ErrCodeNotFound, op, "Recipe %s not found", id)
	}

	graph := &models.GraphResult{
		Nodes: make([]*models.GraphNode, 0),
		Edges: make([]*models.Edge, 0),
	}
	seenNodeIDs := make(map[int64]bool)
	seenEdgeIDs := make(map[int64]bool)

	for _, record := range result.Records {
		for _, value := range record.Values {
			// OPTIONAL MATCH misses show up as nil and fall through.
			switch v := value.(type) {
			case neo4j.Node:
				if !seenNodeIDs[v.Id] {
					graph.Nodes = append(graph.Nodes, &models.GraphNode{
						ID:         formatID(v.Id),
						Labels:     v.Labels,
						Properties: v.Props,
					})
					seenNodeIDs[v.Id] = true
				}

			case neo4j.Relationship:
				if !seenEdgeIDs[v.Id] {
					graph.Edges = append(graph.Edges, &models.Edge{
						ID:         formatID(v.Id),
						Source:     formatID(v.StartId),
						Target:     formatID(v.EndId),
						Type:       v.Type,
						Properties: v.Props,
					})
					seenEdgeIDs[v.Id] = true
				}
			}
		}
	}

	return graph, nil
}

func (r *RecipeRepository) one(ctx context.Context, op, id, query string, params map[string]any) (*models.Recipe, error) {
	result, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, upstream(op, err)
	}
	recipes, err := assemble(op, result)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, newError(ErrCodeNotFound, op, "Recipe %s not found", id)
	}
	if len(recipes) > 1 {
		return nil, newError(ErrCodeMalformedResult, op, "expected 1 recipe but found %d", len(recipes))
	}
	return &recipes[0], nil
}

func (r *RecipeRepository) all(ctx context.Context, op string) ([]models.Recipe, error) {
	result, err := r.runner.Run(ctx, FindAllRecipes, nil)
	if err != nil {
		return nil, upstream(op, err)
	}
	return assemble(op, result)
}

// assemble runs AssembleRecipes and attributes a failure to op.
func assemble(op string, result *neo4j.EagerResult) ([]models.Recipe, error) {
	recipes, err := AssembleRecipes(rowsOf(result.Records))
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Op = op
		}
		return nil, err
	}
	return recipes, nil
}

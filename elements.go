package neorecipe

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

// ElementRepository manages USES edges. Elements have no lifecycle of their
// own: they are created between an existing recipe and ingredient and are
// addressed afterwards by edge id.
type ElementRepository struct {
	runner         DBRunner
	elementMeta    *entityMetadata
	ingredientMeta *entityMetadata
}

// NewElementRepository creates an ElementRepository over runner.
func NewElementRepository(runner DBRunner) (*ElementRepository, error) {
	elementMeta, err := parseTags[models.Element]()
	if err != nil {
		return nil, err
	}
	ingredientMeta, err := parseTags[models.Ingredient]()
	if err != nil {
		return nil, err
	}
	return &ElementRepository{
		runner:         runner,
		elementMeta:    elementMeta,
		ingredientMeta: ingredientMeta,
	}, nil
}

// Add links the ingredient named by in.ID to the recipe with the given amount
// and unit. It fails with NotCreated when either endpoint does not exist.
func (r *ElementRepository) Add(ctx context.Context, recipeID string, in models.ElementInput) (*models.Element, error) {
	const op = "addIngredientToRecipe"
	rid, err := parseID(op, recipeID)
	if err != nil {
		return nil, err
	}
	iid, err := parseID(op, in.ID)
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		"recipeId":     rid,
		"ingredientId": iid,
		"props":        r.props(in),
	}
	result, err := r.runner.Run(ctx, AddElement, params)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(result.Records) == 0 {
		return nil, newError(ErrCodeNotCreated, op,
			"recipe %s or ingredient %s does not exist", recipeID, in.ID)
	}
	return r.decode(op, result.Records[0])
}

// Update changes the amount and unit of the element named by in.ID. A nil
// unit removes it.
func (r *ElementRepository) Update(ctx context.Context, in models.ElementInput) (*models.Element, error) {
	const op = "updateIngredientInRecipe"
	eid, err := parseID(op, in.ID)
	if err != nil {
		return nil, err
	}

	result, err := r.runner.Run(ctx, UpdateElement, map[string]any{"id": eid, "props": r.props(in)})
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(result.Records) == 0 {
		return nil, newError(ErrCodeNotFound, op, "element %s not found", in.ID)
	}
	return r.decode(op, result.Records[0])
}

// Remove deletes the element. The recipe and ingredient are left in place.
func (r *ElementRepository) Remove(ctx context.Context, elementID string) (bool, error) {
	const op = "removeIngredientFromRecipe"
	eid, err := parseID(op, elementID)
	if err != nil {
		return false, err
	}
	result, err := r.runner.Run(ctx, RemoveElement, map[string]any{"id": eid})
	if err != nil {
		return false, upstream(op, err)
	}
	return deletedOne(op, result, "element", elementID)
}

func (r *ElementRepository) props(in models.ElementInput) map[string]any {
	return encodeEntity(r.elementMeta, &models.Element{Amount: in.Amount, Unit: in.Unit})
}

// decode reads the `RETURN e, i` shape shared by Add and Update.
func (r *ElementRepository) decode(op string, record *neo4j.Record) (*models.Element, error) {
	rel, err := relationshipOf(record, "e")
	if err != nil {
		return nil, newError(ErrCodeMalformedResult, op, "%v", err)
	}
	node, err := nodeOf(record, "i")
	if err != nil {
		return nil, newError(ErrCodeMalformedResult, op, "%v", err)
	}

	edge, err := decodeEntity[models.Element](r.elementMeta, formatID(rel.Id), rel.Props)
	if err != nil {
		return nil, newError(ErrCodeMalformedResult, op, "%v", err)
	}
	ingredient, err := decodeEntity[models.Ingredient](r.ingredientMeta, formatID(node.Id), node.Props)
	if err != nil {
		return nil, newError(ErrCodeMalformedResult, op, "%v", err)
	}

	element := models.NewElement(edge.ID, edge.Amount, edge.Unit, *ingredient)
	return &element, nil
}

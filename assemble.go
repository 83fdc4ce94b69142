package neorecipe

import (
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

// Column names of the flat recipe projection (see recipeColumns).
const (
	colRecipeID           = "recipeId"
	colRecipeName         = "recipeName"
	colRecipeDescription  = "recipeDescription"
	colRecipeInstructions = "recipeInstructions"
	colRecipeImage        = "recipeImage"
	colIngredientID       = "ingredientId"
	colIngredientName     = "ingredientName"
	colElementID          = "elementId"
	colAmount             = "amount"
	colUnit               = "unit"
)

// AssembleRecipes folds flat recipe x element rows back into nested Recipe
// values.
//
// Recipes are returned in order of first appearance of their identifier. A row
// whose ingredient columns are null contributes the recipe with no element;
// every other row appends exactly one Element, in row order. Elements are not
// de-duplicated: two rows naming the same ingredient yield two Elements.
//
// A row without a recipe identifier, or an element row without its edge id or
// amount, fails the whole call with a MalformedResult error.
func AssembleRecipes(rows []Row) ([]models.Recipe, error) {
	const op = "assembleRecipes"

	order := make([]string, 0)
	byID := make(map[string]*models.Recipe)

	for i, row := range rows {
		recipeID, ok, err := idValue(row, colRecipeID)
		if err != nil {
			return nil, newError(ErrCodeMalformedResult, op, "row %d: %v", i, err)
		}
		if !ok {
			return nil, newError(ErrCodeMalformedResult, op, "row %d: missing %s", i, colRecipeID)
		}

		element, hasElement, err := elementFromRow(row)
		if err != nil {
			return nil, newError(ErrCodeMalformedResult, op, "row %d: %v", i, err)
		}

		recipe, seen := byID[recipeID]
		if !seen {
			recipe, err = recipeFromRow(recipeID, row)
			if err != nil {
				return nil, newError(ErrCodeMalformedResult, op, "row %d: %v", i, err)
			}
			byID[recipeID] = recipe
			order = append(order, recipeID)
		}

		if hasElement {
			recipe.Elements = append(recipe.Elements, element)
		}
	}

	recipes := make([]models.Recipe, 0, len(order))
	for _, id := range order {
		recipes = append(recipes, *byID[id])
	}
	return recipes, nil
}

func recipeFromRow(id string, row Row) (*models.Recipe, error) {
	name, err := stringValue(row, colRecipeName)
	if err != nil {
		return nil, err
	}
	description, err := optionalString(row, colRecipeDescription)
	if err != nil {
		return nil, err
	}
	instructions, err := optionalString(row, colRecipeInstructions)
	if err != nil {
		return nil, err
	}
	image, err := optionalString(row, colRecipeImage)
	if err != nil {
		return nil, err
	}
	return &models.Recipe{
		ID:           id,
		Name:         name,
		Description:  description,
		Instructions: instructions,
		Image:        image,
		Elements:     []models.Element{},
	}, nil
}

// elementFromRow returns ok=false for the null row of an unmatched OPTIONAL MATCH.
func elementFromRow(row Row) (models.Element, bool, error) {
	ingredientID, ok, err := idValue(row, colIngredientID)
	if err != nil || !ok {
		return models.Element{}, false, err
	}

	ingredientName, err := stringValue(row, colIngredientName)
	if err != nil {
		return models.Element{}, false, err
	}

	elementID, ok, err := idValue(row, colElementID)
	if err != nil {
		return models.Element{}, false, err
	}
	if !ok {
		return models.Element{}, false, fmt.Errorf("ingredient %s without %s", ingredientID, colElementID)
	}

	amount, ok, err := floatValue(row, colAmount)
	if err != nil {
		return models.Element{}, false, err
	}
	if !ok {
		return models.Element{}, false, fmt.Errorf("element %s without %s", elementID, colAmount)
	}

	unit, err := optionalString(row, colUnit)
	if err != nil {
		return models.Element{}, false, err
	}

	ingredient := models.NewIngredient(ingredientID, ingredientName)
	return models.NewElement(elementID, amount, unit, ingredient), true, nil
}

package neorecipe

import (
	"cmp"
	"slices"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

// RankRecipes scores every recipe against the candidate ingredient ids and
// orders the result so the most satisfiable recipes come first.
//
// IngredientCount is the number of elements on the recipe, independent of the
// candidates. MissingIngredientCount is the number of those elements whose
// ingredient is not a candidate. Ordering is by MissingIngredientCount
// ascending, then IngredientCount descending; remaining ties keep input order.
//
// A recipe without elements scores 0/0 and sorts with the fully satisfied
// recipes. An empty candidate set is valid and marks every element missing.
func RankRecipes(recipes []models.Recipe, candidates []string) []models.RankedRecipe {
	available := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		available[id] = struct{}{}
	}

	ranked := make([]models.RankedRecipe, 0, len(recipes))
	for _, recipe := range recipes {
		missing := 0
		for _, el := range recipe.Elements {
			if _, ok := available[el.Ingredient.ID]; !ok {
				missing++
			}
		}
		ranked = append(ranked, models.RankedRecipe{
			Recipe:                 recipe,
			IngredientCount:        len(recipe.Elements),
			MissingIngredientCount: missing,
		})
	}

	slices.SortStableFunc(ranked, func(a, b models.RankedRecipe) int {
		if c := cmp.Compare(a.MissingIngredientCount, b.MissingIngredientCount); c != 0 {
			return c
		}
		return cmp.Compare(b.IngredientCount, a.IngredientCount)
	})
	return ranked
}

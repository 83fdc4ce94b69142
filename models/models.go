// Package models contains the domain entities of the recipe catalog.
// Ingredient and Recipe map to graph nodes, Element maps to the USES relationship
// between them. The `crud` struct tags describe how fields map onto graph
// properties; `crud:"id"` marks the field that receives the store identity.
package models

// Ingredient is a material that can be used by recipes.
type Ingredient struct {
	// ID is the decimal form of the store-assigned node identity.
	ID string `json:"id" yaml:"id" crud:"id"`

	// Name is the human-readable name. Names are not unique.
	Name string `json:"name" yaml:"name" crud:"property:name,required"`
}

// NewIngredient builds an Ingredient value.
func NewIngredient(id, name string) Ingredient {
	return Ingredient{ID: id, Name: name}
}

// Element is one recipe-uses-ingredient edge. It holds a non-owning reference
// to the Ingredient it points to.
type Element struct {
	// ID is the decimal form of the relationship identity.
	ID string `json:"id" yaml:"id" crud:"id"`

	Amount float64 `json:"amount" yaml:"amount" crud:"property:amount,required"`

	// Unit is optional and carries no default meaning when absent.
	Unit *string `json:"unit,omitempty" yaml:"unit,omitempty" crud:"property:unit"`

	Ingredient Ingredient `json:"ingredient" yaml:"ingredient"`
}

// NewElement builds an Element referencing ingredient.
func NewElement(id string, amount float64, unit *string, ingredient Ingredient) Element {
	return Element{ID: id, Amount: amount, Unit: unit, Ingredient: ingredient}
}

// Recipe owns an ordered collection of Elements. Element order follows the
// order in which the store returned them.
type Recipe struct {
	ID           string    `json:"id" yaml:"id" crud:"id"`
	Name         string    `json:"name" yaml:"name" crud:"property:name,required"`
	Description  *string   `json:"description,omitempty" yaml:"description,omitempty" crud:"property:description"`
	Instructions *string   `json:"instructions,omitempty" yaml:"instructions,omitempty" crud:"property:instructions"`
	Image        *string   `json:"image,omitempty" yaml:"image,omitempty" crud:"property:image"`
	Elements     []Element `json:"elements" yaml:"elements"`
}

// RecipeInput carries the writable fields of a Recipe.
type RecipeInput struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
	Image        *string `json:"image,omitempty"`
}

// Recipe converts the input into a Recipe without identity or elements.
func (in RecipeInput) Recipe() Recipe {
	return Recipe{
		Name:         in.Name,
		Description:  in.Description,
		Instructions: in.Instructions,
		Image:        in.Image,
		Elements:     []Element{},
	}
}

// ElementInput is the caller-facing shape of an element. When adding an
// ingredient to a recipe ID names the ingredient; when updating, ID names the
// element (edge) itself.
type ElementInput struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Unit   *string `json:"unit,omitempty"`
}

// RankedRecipe is a Recipe annotated with its coverage against a candidate
// ingredient set. The counts are computed per query and never stored.
type RankedRecipe struct {
	Recipe
	IngredientCount        int `json:"ingredientCount"`
	MissingIngredientCount int `json:"missingIngredientCount"`
}

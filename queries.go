package neorecipe

// recipeColumns is the flat projection consumed by AssembleRecipes: one row
// per recipe x USES edge, or one row with null ingredient columns when the
// OPTIONAL MATCH finds no edge.
const recipeColumns = `
RETURN id(r) AS recipeId,
       r.name AS recipeName,
       r.description AS recipeDescription,
       r.instructions AS recipeInstructions,
       r.image AS recipeImage,
       id(i) AS ingredientId,
       i.name AS ingredientName,
       id(e) AS elementId,
       e.amount AS amount,
       e.unit AS unit
`

// Cypher query constants for composite traversals. Single-pattern queries are
// assembled with gocypher in repository.go.
const (
	// FindNodeByID matches a labelled node by its internal id. %s is the label.
	FindNodeByID = `MATCH (n:%s) WHERE id(n) = $id RETURN n`

	// UpdateNodeByID replaces every property of a labelled node. %s is the label.
	UpdateNodeByID = `MATCH (n:%s) WHERE id(n) = $id SET n = $props RETURN n`

	// DeleteNodeByID detaches and deletes a labelled node. The aggregate always
	// yields one row, with deleted = 0 when nothing matched. %s is the label.
	DeleteNodeByID = `
MATCH (n:%s) WHERE id(n) = $id
DETACH DELETE n
RETURN count(n) AS deleted
`

	// FindAllRecipes returns every recipe with its elements, in a stable order.
	FindAllRecipes = `
MATCH (r:Recipe)
OPTIONAL MATCH (r)-[e:USES]->(i:Ingredient)` + recipeColumns + `ORDER BY id(r), id(e)`

	// FindRecipeByID returns a single recipe with its elements.
	FindRecipeByID = `
MATCH (r:Recipe) WHERE id(r) = $id
OPTIONAL MATCH (r)-[e:USES]->(i:Ingredient)` + recipeColumns + `ORDER BY id(e)`

	// UpdateRecipeByID replaces the recipe properties and returns the recipe
	// with its elements in the same round trip.
	UpdateRecipeByID = `
MATCH (r:Recipe) WHERE id(r) = $id
SET r = $props
WITH r
OPTIONAL MATCH (r)-[e:USES]->(i:Ingredient)` + recipeColumns + `ORDER BY id(e)`

	// RecipeGraph returns the recipe node, its USES edges and ingredients.
	RecipeGraph = `
MATCH (r:Recipe) WHERE id(r) = $id
OPTIONAL MATCH (r)-[e:USES]->(i:Ingredient)
RETURN r, e, i
ORDER BY id(e)
`

	// AddElement creates a USES edge between an existing recipe and ingredient.
	AddElement = `
MATCH (r:Recipe) WHERE id(r) = $recipeId
MATCH (i:Ingredient) WHERE id(i) = $ingredientId
CREATE (r)-[e:USES]->(i)
SET e = $props
RETURN e, i
`

	// UpdateElement replaces the properties of a USES edge.
	UpdateElement = `
MATCH (:Recipe)-[e:USES]->(i:Ingredient) WHERE id(e) = $id
SET e = $props
RETURN e, i
`

	// RemoveElement deletes a USES edge.
	RemoveElement = `
MATCH (:Recipe)-[e:USES]->(:Ingredient) WHERE id(e) = $id
DELETE e
RETURN count(e) AS deleted
`
)

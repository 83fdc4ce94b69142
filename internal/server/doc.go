// Package server exposes the recipe catalog over HTTP.
//
// Routes (JSON bodies):
//
//	GET    /v1/ingredients              list ingredients
//	POST   /v1/ingredients              create {name}
//	GET    /v1/ingredients/{id}         fetch one
//	PUT    /v1/ingredients/{id}         rename {name}
//	DELETE /v1/ingredients/{id}         delete and detach from recipes
//	GET    /v1/recipes                  list recipes with elements
//	POST   /v1/recipes                  create {name, description?, instructions?, image?}
//	POST   /v1/recipes/match            rank by {ingredientIds}
//	GET    /v1/recipes/{id}             fetch one
//	PUT    /v1/recipes/{id}             replace fields
//	DELETE /v1/recipes/{id}             delete with its elements
//	GET    /v1/recipes/{id}/graph       nodes and edges of one recipe
//	POST   /v1/recipes/{id}/elements    add {id, amount, unit?}
//	PUT    /v1/elements/{id}            update {amount, unit?}
//	DELETE /v1/elements/{id}            remove
//
// System endpoints /health, /ready and /metrics bypass rate limiting.
//
// Every API route runs behind the middleware chain: metrics, request id,
// panic recovery, rate limiting and request logging. Failures are written as
// ErrorResponse with the X-Request-Id of the request.
package server

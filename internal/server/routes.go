package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

const maxBodyBytes = 1 << 20

type route struct {
	pattern string
	handler http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{"GET /v1/ingredients", s.handleListIngredients},
		{"POST /v1/ingredients", s.handleCreateIngredient},
		{"GET /v1/ingredients/{id}", s.handleGetIngredient},
		{"PUT /v1/ingredients/{id}", s.handleUpdateIngredient},
		{"DELETE /v1/ingredients/{id}", s.handleDeleteIngredient},

		{"GET /v1/recipes", s.handleListRecipes},
		{"POST /v1/recipes", s.handleCreateRecipe},
		{"POST /v1/recipes/match", s.handleMatchRecipes},
		{"GET /v1/recipes/{id}", s.handleGetRecipe},
		{"PUT /v1/recipes/{id}", s.handleUpdateRecipe},
		{"DELETE /v1/recipes/{id}", s.handleDeleteRecipe},
		{"GET /v1/recipes/{id}/graph", s.handleRecipeGraph},
		{"POST /v1/recipes/{id}/elements", s.handleAddElement},

		{"PUT /v1/elements/{id}", s.handleUpdateElement},
		{"DELETE /v1/elements/{id}", s.handleRemoveElement},
	}
}

func (s *Server) handleDefault(w http.ResponseWriter, _ *http.Request) {
	routes := s.routes()
	paths := make([]string, 0, len(routes)+3)
	for _, rt := range routes {
		paths = append(paths, rt.pattern)
	}
	paths = append(paths, "GET /health", "GET /ready", "GET /metrics")

	respondJSON(w, http.StatusOK, struct {
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Ready     bool     `json:"ready"`
		Timestamp string   `json:"timestamp"`
		Routes    []string `json:"routes"`
	}{
		Name:      name,
		Version:   version,
		Ready:     s.isReady(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes:    paths,
	})
}

type nameRequest struct {
	Name string `json:"name"`
}

type matchRequest struct {
	IngredientIDs []string `json:"ingredientIds"`
}

type elementRequest struct {
	ID     string   `json:"id"`
	Amount *float64 `json:"amount"`
	Unit   *string  `json:"unit,omitempty"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// decodeBody reads a single JSON value into v. On failure it writes a 400
// and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := fmt.Sprintf("invalid request body: %v", err)
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, msg, false, nil)
		return false
	}
	return true
}

func (s *Server) invalid(w http.ResponseWriter, r *http.Request, format string, args ...any) {
	s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, fmt.Sprintf(format, args...), false, nil)
}

// respond writes v with status, or the error if err is non-nil.
func respond[T any](s *Server, w http.ResponseWriter, r *http.Request, status int, v T, err error) {
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}
	respondJSON(w, status, v)
}

func (s *Server) respondDeleted(w http.ResponseWriter, r *http.Request, ok bool, err error) {
	respond(s, w, r, http.StatusOK, deleteResponse{Deleted: ok}, err)
}

func (s *Server) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.svc.GetAllIngredients(r.Context())
	respond(s, w, r, http.StatusOK, ingredients, err)
}

func (s *Server) handleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.invalid(w, r, "name is required")
		return
	}
	in, err := s.svc.CreateIngredient(r.Context(), req.Name)
	respond(s, w, r, http.StatusCreated, in, err)
}

func (s *Server) handleGetIngredient(w http.ResponseWriter, r *http.Request) {
	in, err := s.svc.GetIngredient(r.Context(), r.PathValue("id"))
	respond(s, w, r, http.StatusOK, in, err)
}

func (s *Server) handleUpdateIngredient(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.invalid(w, r, "name is required")
		return
	}
	in, err := s.svc.UpdateIngredient(r.Context(), r.PathValue("id"), req.Name)
	respond(s, w, r, http.StatusOK, in, err)
}

func (s *Server) handleDeleteIngredient(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.DeleteIngredient(r.Context(), r.PathValue("id"))
	s.respondDeleted(w, r, ok, err)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.svc.GetAllRecipes(r.Context())
	respond(s, w, r, http.StatusOK, recipes, err)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req models.RecipeInput
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.invalid(w, r, "name is required")
		return
	}
	recipe, err := s.svc.CreateRecipe(r.Context(), req)
	respond(s, w, r, http.StatusCreated, recipe, err)
}

func (s *Server) handleMatchRecipes(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	ranked, err := s.svc.GetRecipesByIngredients(r.Context(), req.IngredientIDs)
	respond(s, w, r, http.StatusOK, ranked, err)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.svc.GetRecipe(r.Context(), r.PathValue("id"))
	respond(s, w, r, http.StatusOK, recipe, err)
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req models.RecipeInput
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.invalid(w, r, "name is required")
		return
	}
	recipe, err := s.svc.UpdateRecipe(r.Context(), r.PathValue("id"), req)
	respond(s, w, r, http.StatusOK, recipe, err)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.DeleteRecipe(r.Context(), r.PathValue("id"))
	s.respondDeleted(w, r, ok, err)
}

func (s *Server) handleRecipeGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.svc.RecipeGraph(r.Context(), r.PathValue("id"))
	respond(s, w, r, http.StatusOK, graph, err)
}

func (s *Server) handleAddElement(w http.ResponseWriter, r *http.Request) {
	var req elementRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Amount == nil {
		s.invalid(w, r, "amount is required")
		return
	}
	el, err := s.svc.AddIngredientToRecipe(r.Context(), r.PathValue("id"), models.ElementInput{
		ID:     req.ID,
		Amount: *req.Amount,
		Unit:   req.Unit,
	})
	respond(s, w, r, http.StatusCreated, el, err)
}

// handleUpdateElement takes the element id from the path; a body id is
// ignored.
func (s *Server) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	var req elementRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Amount == nil {
		s.invalid(w, r, "amount is required")
		return
	}
	el, err := s.svc.UpdateIngredientInRecipe(r.Context(), models.ElementInput{
		ID:     r.PathValue("id"),
		Amount: *req.Amount,
		Unit:   req.Unit,
	})
	respond(s, w, r, http.StatusOK, el, err)
}

func (s *Server) handleRemoveElement(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.RemoveIngredientFromRecipe(r.Context(), r.PathValue("id"))
	s.respondDeleted(w, r, ok, err)
}

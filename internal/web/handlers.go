package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/amosley/fridgechef/internal/chat"
	"github.com/amosley/fridgechef/internal/chef"
	"github.com/amosley/fridgechef/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.orchestrator.Health(r.Context())
	status := http.StatusOK
	if !health.Detection || !health.Generation {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, health)
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ingredients": s.orchestrator.Inventory().Snapshot(),
	})
}

func (s *Server) handleAddIngredient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	name, err := s.orchestrator.Inventory().AddManual(r.Context(), req.Name)
	if err != nil {
		s.logger.Error("failed to add ingredient", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save inventory")
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) handleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.orchestrator.Inventory().Remove(r.Context(), name); err != nil {
		s.logger.Error("failed to remove ingredient", "name", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save inventory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetInventory(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.Inventory().Reset(r.Context()); err != nil {
		s.logger.Error("failed to reset inventory", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save inventory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.orchestrator.NewSession()
	s.writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// readImage accepts either a raw image body or JSON {"image_base64": "..."}.
func readImage(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxImageBytes {
		return nil, errors.New("image too large")
	}
	if strings.HasPrefix(strings.TrimSpace(r.Header.Get("Content-Type")), "application/json") {
		var req struct {
			ImageBase64 string `json:"image_base64"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, errors.New("invalid JSON body")
		}
		return base64.StdEncoding.DecodeString(req.ImageBase64)
	}
	return body, nil
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	image, err := readImage(r)
	if err != nil || len(image) == 0 {
		s.writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	result, err := s.orchestrator.HandleImage(r.Context(), sessionID, image)
	switch {
	case errors.Is(err, chef.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		s.logger.Error("scan failed", "session_id", sessionID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save inventory")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req struct {
		Message             string   `json:"message"`
		DietaryRestrictions []string `json:"dietary_restrictions"`
		CuisineType         string   `json:"cuisine_type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	opts := chat.PromptOptions{
		DietaryRestrictions: req.DietaryRestrictions,
		CuisineType:         req.CuisineType,
	}
	result, err := s.orchestrator.HandleMessage(r.Context(), sessionID, req.Message, opts)
	switch {
	case errors.Is(err, chef.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		s.logger.Error("chat failed", "session_id", sessionID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	turns, err := s.orchestrator.History(sessionID)
	if errors.Is(err, chef.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if err := s.orchestrator.ClearHistory(sessionID); err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req struct {
		Request string `json:"request"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Request) == "" {
		s.writeError(w, http.StatusBadRequest, "request is required")
		return
	}

	result, err := s.orchestrator.PlanShoppingList(r.Context(), sessionID, req.Request)
	switch {
	case errors.Is(err, chef.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		s.logger.Error("shopping list failed", "session_id", sessionID, "error", err)
		s.writeError(w, http.StatusBadGateway, "could not produce a valid shopping list")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSaveRecipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	recipe, err := s.orchestrator.SaveRecipe(r.Context(), req.Title, req.Body)
	if err != nil {
		if strings.Contains(err.Error(), "empty") {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("failed to save recipe", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save recipe")
		return
	}
	s.writeJSON(w, http.StatusCreated, recipe)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	recipes, err := func() ([]*domain.Recipe, error) {
		if query != "" {
			return s.orchestrator.SearchRecipes(r.Context(), query)
		}
		return s.orchestrator.ListRecipes(r.Context())
	}()
	if err != nil {
		s.logger.Error("failed to list recipes", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}
	if err := s.orchestrator.DeleteRecipe(r.Context(), id); err != nil {
		s.writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mfrancani/patrimonio/internal/cache"
	"github.com/mfrancani/patrimonio/internal/events"
	"github.com/mfrancani/patrimonio/internal/model"
)

type createProductInput struct {
	Name        string   `json:"name"`
	Cost        float64  `json:"cost"`
	Price       *float64 `json:"price"`
	Stock       int      `json:"stock"`
	Description string   `json:"description"`
}

type updateProductInput struct {
	Name        *string  `json:"name"`
	Cost        *float64 `json:"cost"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Description *string  `json:"description"`
}

// handleCreateProduct handles POST /v1/products.
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	actor := s.authorize(w, r, model.HierarchyCollaborator)
	if actor == nil {
		return
	}

	var in createProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p := &model.Product{
		EnterpriseID:  actor.EnterpriseID,
		Name:          in.Name,
		Cost:          in.Cost,
		Price:         in.Price,
		Stock:         in.Stock,
		Description:   in.Description,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     actor.ID,
		LastUpdatedBy: actor.ID,
	}
	if err := model.ValidateProduct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateProduct(r.Context(), p); err != nil {
		s.logger.Error("failed to create product", "name", p.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	if s.cache != nil {
		s.cache.Set(r.Context(), p)
	}
	s.publish(r.Context(), events.TopicProductCreated, events.ProductCreated{Product: p})

	writeJSON(w, http.StatusCreated, p)
}

// handleListProducts handles GET /v1/products.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	actor := s.authorize(w, r, model.HierarchyCollaborator)
	if actor == nil {
		return
	}

	q := r.URL.Query()
	filter := model.ProductFilter{
		EnterpriseID: actor.EnterpriseID,
		Search:       q.Get("search"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	products, total, err := s.store.ListProducts(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	// Ensure products is never null in JSON output.
	if products == nil {
		products = []*model.Product{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"total":    total,
	})
}

// handleGetProduct handles GET /v1/products/{id}.
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	actor := s.authorize(w, r, model.HierarchyCollaborator)
	if actor == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if s.cache != nil {
		if p, err := s.cache.Get(r.Context(), actor.EnterpriseID, id); err == nil {
			writeJSON(w, http.StatusOK, p)
			return
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("product cache read failed", "id", id, "error", err)
		}
	}

	p, err := s.store.GetProduct(r.Context(), id, actor.EnterpriseID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get product", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	if s.cache != nil {
		s.cache.Set(r.Context(), p)
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateProduct handles PUT /v1/products/{id}.
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor := s.authorize(w, r, model.HierarchyCollaborator)
	if actor == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var in updateProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Collaborators may only adjust stock; everything else needs a manager.
	if actor.Hierarchy > model.HierarchyManager {
		if in.Name != nil || in.Cost != nil || in.Price != nil || in.Description != nil {
			writeError(w, http.StatusForbidden, "role may only update stock")
			return
		}
	}

	p, err := s.store.GetProduct(r.Context(), id, actor.EnterpriseID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get product", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	changes := make(map[string]any)
	if in.Name != nil {
		p.Name = *in.Name
		changes["name"] = *in.Name
	}
	if in.Cost != nil {
		p.Cost = *in.Cost
		changes["cost"] = *in.Cost
	}
	if in.Price != nil {
		p.Price = in.Price
		changes["price"] = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
		changes["stock"] = *in.Stock
	}
	if in.Description != nil {
		p.Description = *in.Description
		changes["description"] = *in.Description
	}
	if len(changes) == 0 {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := model.ValidateProduct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	p.UpdatedAt = &now
	p.LastUpdatedBy = actor.ID

	if err := s.store.UpdateProduct(r.Context(), p); err != nil {
		s.logger.Error("failed to update product", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	if s.cache != nil {
		s.cache.Invalidate(r.Context(), actor.EnterpriseID, id)
	}
	s.publish(r.Context(), events.TopicProductUpdated, events.ProductUpdated{Product: p, Changes: changes})

	writeJSON(w, http.StatusOK, p)
}

// handleDeleteProduct handles DELETE /v1/products/{id}.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor := s.authorize(w, r, model.HierarchyManager)
	if actor == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := s.store.GetProduct(r.Context(), id, actor.EnterpriseID); errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	} else if err != nil {
		s.logger.Error("failed to get product", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	if err := s.store.DeleteProduct(r.Context(), id, actor.EnterpriseID); err != nil {
		s.logger.Error("failed to delete product", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	if s.cache != nil {
		s.cache.Invalidate(r.Context(), actor.EnterpriseID, id)
	}
	s.publish(r.Context(), events.TopicProductDeleted, events.ProductDeleted{
		ProductID:    id,
		EnterpriseID: actor.EnterpriseID,
	})

	w.WriteHeader(http.StatusNoContent)
}

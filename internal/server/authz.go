package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/mfrancani/patrimonio/internal/model"
)

// actorHeader carries the id of the user performing the request. The API
// gateway authenticates the caller and injects it.
const actorHeader = "X-Actor-Id"

// authorize resolves the acting user and enforces the product access policy:
// the actor's scope must grant patrimonial access and the actor's role must
// sit at or above maxHierarchy (lower values are more senior). On failure it
// writes the error response and returns nil.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, maxHierarchy int) *model.UserView {
	raw := r.Header.Get(actorHeader)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing "+actorHeader+" header")
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid "+actorHeader+" header")
		return nil
	}

	actor, err := s.store.GetUserView(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusUnauthorized, "unknown actor")
		return nil
	}
	if err != nil {
		s.logger.Error("failed to load actor", "actor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load actor")
		return nil
	}

	if actor.ScopeName != model.ScopePatrimonial && actor.ScopeName != model.ScopeAll {
		writeError(w, http.StatusForbidden, "scope does not grant product access")
		return nil
	}
	if actor.Hierarchy > maxHierarchy {
		writeError(w, http.StatusForbidden, "role not senior enough for this operation")
		return nil
	}

	return actor
}

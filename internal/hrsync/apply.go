package hrsync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfrancani/patrimonio/internal/model"
	"github.com/mfrancani/patrimonio/internal/store"
)

// Engine applies validated HR events to the store. Each event runs inside
// one transaction obtained from the store, retried on transient failures.
type Engine struct {
	store       store.Store
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewEngine returns an Engine with the default retry policy
// (5 attempts, 5 second backoff).
func NewEngine(s store.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:       s,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// SetRetryPolicy overrides the default attempt count and backoff.
// Non-positive attempts and negative backoffs are ignored.
func (e *Engine) SetRetryPolicy(maxAttempts int, backoff time.Duration) {
	if maxAttempts > 0 {
		e.maxAttempts = maxAttempts
	}
	if backoff >= 0 {
		e.backoff = backoff
	}
}

// Apply dispatches the event to its mutator and runs it under the retry
// policy. The returned error is fatal for this message; when it is non-nil
// the outcome is meaningless.
func (e *Engine) Apply(ctx context.Context, env *Envelope) (Outcome, error) {
	var mutate mutator
	switch env.Kind {
	case KindEnterpriseCreated:
		mutate = e.enterpriseCreated(env)
	case KindEnterpriseUpdated:
		mutate = e.enterpriseUpdated(env)
	case KindEnterpriseDeleted:
		mutate = e.enterpriseDeleted(env)
	case KindUserCreated:
		mutate = e.userCreated(env)
	case KindUserUpdated:
		mutate = e.userUpdated(env)
	case KindUserDeleted:
		mutate = e.userDeleted(env)
	default:
		e.logger.Warn("hrsync: no mutator for event kind", "event", env.Kind)
		return OutcomeSkipped, nil
	}
	return e.withRetry(ctx, env.Kind, mutate)
}

// Event payload shapes. Fields the HR service may omit are pointers so that
// "absent" and "zero" stay distinguishable.

type rolePayload struct {
	ID           int64  `json:"id"`
	EnterpriseID int64  `json:"enterprise_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Hierarchy    int    `json:"hierarchy"`
}

type scopePayload struct {
	ID           int64  `json:"id"`
	EnterpriseID int64  `json:"enterprise_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

type enterprisePayload struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	AccountableEmail string         `json:"accountable_email"`
	ActivityType     string         `json:"activity_type"`
	Roles            []rolePayload  `json:"roles"`
	Scopes           []scopePayload `json:"scopes"`
}

type enterpriseUpdatePayload struct {
	ID               int64   `json:"id"`
	Name             *string `json:"name"`
	AccountableEmail *string `json:"accountable_email"`
	ActivityType     *string `json:"activity_type"`
}

type idPayload struct {
	ID int64 `json:"id"`
}

type userCreatePayload struct {
	ID         int64              `json:"id"`
	Username   string             `json:"username"`
	Email      string             `json:"email"`
	FullName   string             `json:"full_name"`
	CreatedAt  string             `json:"created_at"`
	Role       *rolePayload       `json:"role"`
	Scope      *scopePayload      `json:"scope"`
	Enterprise *enterprisePayload `json:"enterprise"`
}

type userUpdatePayload struct {
	ID           *int64  `json:"id"`
	EnterpriseID *int64  `json:"enterprise_id"`
	RoleID       *int64  `json:"role_id"`
	RoleName     *string `json:"role_name"`
	ScopeID      *int64  `json:"scope_id"`
	ScopeName    *string `json:"scope_name"`
	Username     *string `json:"username"`
	Email        *string `json:"email"`
	FullName     *string `json:"full_name"`
}

// userSnapshot is the full user record attached to user.updated events.
type userSnapshot struct {
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	FullName     string        `json:"full_name"`
	RoleID       int64         `json:"role_id"`
	ScopeID      int64         `json:"scope_id"`
	EnterpriseID int64         `json:"enterprise_id"`
	CreatedAt    string        `json:"created_at"`
	Role         *rolePayload  `json:"role"`
	Scope        *scopePayload `json:"scope"`
}

// scopeName returns the snapshot's declared scope name, or "" when absent.
func (s *userSnapshot) scopeName() string {
	if s.Scope == nil {
		return ""
	}
	return s.Scope.Name
}

func (e *Engine) enterpriseCreated(env *Envelope) mutator {
	return func(ctx context.Context, tx store.Store) (Outcome, error) {
		var p enterprisePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			e.logger.Warn("hrsync: bad enterprise.created payload", "error", err)
			return OutcomeInvalid, nil
		}
		if p.ID == 0 || p.Name == "" {
			e.logger.Warn("hrsync: enterprise.created missing id or name")
			return OutcomeInvalid, nil
		}

		ent := &model.Enterprise{
			ID:               p.ID,
			Name:             p.Name,
			AccountableEmail: p.AccountableEmail,
			ActivityType:     p.ActivityType,
		}
		if err := tx.CreateEnterprise(ctx, ent); err != nil {
			return OutcomeInvalid, err
		}

		for _, rp := range p.Roles {
			role := &model.Role{
				ID:           rp.ID,
				EnterpriseID: defaultInt64(rp.EnterpriseID, p.ID),
				Name:         rp.Name,
				Description:  rp.Description,
				Hierarchy:    rp.Hierarchy,
			}
			if err := tx.CreateRole(ctx, role); err != nil {
				return OutcomeInvalid, err
			}
		}
		for _, sp := range p.Scopes {
			scope := &model.Scope{
				ID:           sp.ID,
				EnterpriseID: defaultInt64(sp.EnterpriseID, p.ID),
				Name:         sp.Name,
				Description:  sp.Description,
			}
			if err := tx.CreateScope(ctx, scope); err != nil {
				return OutcomeInvalid, err
			}
		}
		return OutcomeApplied, nil
	}
}

func (e *Engine) enterpriseUpdated(env *Envelope) mutator {
	return func(ctx context.Context, tx store.Store) (Outcome, error) {
		var p enterpriseUpdatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			e.logger.Warn("hrsync: bad enterprise.updated payload", "error", err)
			return OutcomeInvalid, nil
		}
		if p.ID == 0 {
			return OutcomeInvalid, nil
		}

		ent, err := tx.GetEnterprise(ctx, p.ID)
		if errors.Is(err, sql.ErrNoRows) {
			e.logger.Info("hrsync: enterprise not found", "id", p.ID)
			return OutcomeNotFound, nil
		}
		if err != nil {
			return OutcomeInvalid, err
		}

		if p.Name != nil {
			ent.Name = *p.Name
		}
		if p.AccountableEmail != nil {
			ent.AccountableEmail = *p.AccountableEmail
		}
		if p.ActivityType != nil {
			ent.ActivityType = *p.ActivityType
		}

		if err := tx.UpdateEnterprise(ctx, ent); err != nil {
			return OutcomeInvalid, err
		}
		return OutcomeApplied, nil
	}
}

func (e *Engine) enterpriseDeleted(env *Envelope) mutator {
	return func(ctx context.Context, tx store.Store) (Outcome, error) {
		var p idPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.ID == 0 {
			e.logger.Warn("hrsync: bad enterprise.deleted payload", "error", err)
			return OutcomeInvalid, nil
		}

		if _, err := tx.GetEnterprise(ctx, p.ID); errors.Is(err, sql.ErrNoRows) {
			e.logger.Info("hrsync: enterprise not found", "id", p.ID)
			return OutcomeNotFound, nil
		} else if err != nil {
			return OutcomeInvalid, err
		}

		if err := tx.DeleteEnterprise(ctx, p.ID); err != nil {
			return OutcomeInvalid, err
		}
		return OutcomeApplied, nil
	}
}

func (e *Engine) userCreated(env *Envelope) mutator {
	return func(ctx context.Context, tx store.Store) (Outcome, error) {
		var p userCreatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			e.logger.Warn("hrsync: bad user.created payload", "error", err)
			return OutcomeInvalid, nil
		}
		if p.ID == 0 || p.Role == nil || p.Scope == nil || p.Enterprise == nil {
			e.logger.Warn("hrsync: user.created missing role, scope, or enterprise", "id", p.ID)
			return OutcomeInvalid, nil
		}

		createdAt := time.Now().UTC()
		if p.CreatedAt != "" {
			ts, err := parseStartDate(p.CreatedAt)
			if err != nil {
				e.logger.Warn("hrsync: bad created_at on user.created", "error", err)
				return OutcomeInvalid, nil
			}
			createdAt = ts
		}

		u := &model.User{
			ID:           p.ID,
			Username:     p.Username,
			Email:        p.Email,
			FullName:     p.FullName,
			RoleID:       p.Role.ID,
			ScopeID:      p.Scope.ID,
			EnterpriseID: p.Enterprise.ID,
			CreatedAt:    createdAt,
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			return OutcomeInvalid, err
		}
		return OutcomeApplied, nil
	}
}

func (e *Engine) userUpdated(env *Envelope) mutator {
	return func(ctx context.Context, tx store.Store) (Outcome, error) {
		if len(env.FullUser) == 0 {
			e.logger.Info("hrsync: user.updated without full user snapshot, ignoring")
			return OutcomeSkipped, nil
		}

		var p userUpdatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			e.logger.Warn("hrsync: bad user.updated payload", "error", err)
			return OutcomeInvalid, nil
		}
		if p.ID == nil || p.EnterpriseID == nil {
			e.logger.Info("hrsync: user.updated missing id or enterprise_id, ignoring")
			return OutcomeSkipped, nil
		}

		var snap userSnapshot
		if err := json.Unmarshal(env.FullUser, &snap); err != nil {
			e.logger.Warn("hrsync: bad user snapshot", "error", err)
			return OutcomeInvalid, nil
		}

		u, err := tx.GetUser(ctx, *p.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return e.insertFromSnapshot(ctx, tx, &snap)
		}
		if err != nil {
			return OutcomeInvalid, err
		}

		// Users outside the All/Sells scopes must not persist in this domain.
		if !model.UserAllowedScope(snap.scopeName()) {
			e.logger.Info("hrsync: deleting user outside allowed scopes",
				"id", u.ID, "username", u.Username, "scope", snap.scopeName())
			if err := tx.DeleteUser(ctx, u.ID); err != nil {
				return OutcomeInvalid, err
			}
			return OutcomeRejected, nil
		}

		if out, err := e.resolveGrants(ctx, tx, u, &p); err != nil || out != OutcomeApplied {
			return out, err
		}

		if p.Username != nil {
			u.Username = *p.Username
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.FullName != nil {
			u.FullName = *p.FullName
		}

		if err := tx.UpdateUser(ctx, u); err != nil {
			return OutcomeInvalid, err
		}

		// The HR feed has produced phantom updates before; verify the row
		// is still there after the write.
		if _, err := tx.GetUser(ctx, u.ID); err != nil {
			return OutcomeInvalid, fmt.Errorf("verify updated user %d: %w", u.ID, err)
		}
		return OutcomeApplied, nil
	}
}

// resolveGrants rewires the user's role and scope references from the update
// payload. Each reference is resolved independently, by id when given and by
// name within the enterprise otherwise; an unresolvable reference leaves the
// current value in place.
func (e *Engine) resolveGrants(ctx context.Context, tx store.Store, u *model.User, p *userUpdatePayload) (Outcome, error) {
	var (
		role *model.Role
		err  error
	)
	switch {
	case p.RoleID != nil && *p.RoleID != 0:
		role, err = tx.GetRole(ctx, *p.RoleID)
	case p.RoleName != nil:
		role, err = tx.FindRoleByName(ctx, *p.EnterpriseID, *p.RoleName)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return OutcomeInvalid, err
	}
	if role != nil {
		u.RoleID = role.ID
	}

	var scope *model.Scope
	err = nil
	switch {
	case p.ScopeID != nil && *p.ScopeID != 0:
		scope, err = tx.GetScope(ctx, *p.ScopeID)
	case p.ScopeName != nil:
		scope, err = tx.FindScopeByName(ctx, *p.EnterpriseID, *p.ScopeName)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return OutcomeInvalid, err
	}
	if scope != nil {
		u.ScopeID = scope.ID
	}

	return OutcomeApplied, nil
}

// insertFromSnapshot creates a user from the full snapshot on a user.updated
// event whose target row does not exist yet, provided its scope is allowed.
func (e *Engine) insertFromSnapshot(ctx context.Context, tx store.Store, snap *userSnapshot) (Outcome, error) {
	if !model.UserAllowedScope(snap.scopeName()) {
		e.logger.Info("hrsync: user not found and snapshot scope not allowed, ignoring",
			"id", snap.ID, "scope", snap.scopeName())
		return OutcomeSkipped, nil
	}

	roleID := snap.RoleID
	if roleID == 0 && snap.Role != nil {
		roleID = snap.Role.ID
	}
	scopeID := snap.ScopeID
	if scopeID == 0 && snap.Scope != nil {
		scopeID = snap.Scope.ID
	}

	createdAt := time.Now().UTC()
	if snap.CreatedAt != "" {
		if ts, err := parseStartDate(snap.CreatedAt); err == nil {
			createdAt = ts
		}
	}

	u := &model.User{
		ID:           snap.ID,
		Username:     snap.Username,
		Email:        snap.Email,
		FullName:     snap.FullName,
		RoleID:       roleID,
		ScopeID:      scopeID,
		EnterpriseID: snap.EnterpriseID,
		CreatedAt:    createdAt,
	}
	if err := tx.CreateUser(ctx, u); err != nil {
		return OutcomeInvalid, err
	}
	e.logger.Info("hrsync: user not found, inserted from snapshot", "id", u.ID)
	return OutcomeApplied, nil
}

func (e *Engine) userDeleted(env *Envelope) mutator {
	return func(ctx context.Context, tx store.Store) (Outcome, error) {
		var p idPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.ID == 0 {
			e.logger.Warn("hrsync: bad user.deleted payload", "error", err)
			return OutcomeInvalid, nil
		}

		if _, err := tx.GetUser(ctx, p.ID); errors.Is(err, sql.ErrNoRows) {
			e.logger.Info("hrsync: user not found", "id", p.ID)
			return OutcomeNotFound, nil
		} else if err != nil {
			return OutcomeInvalid, err
		}

		if err := tx.DeleteUser(ctx, p.ID); err != nil {
			return OutcomeInvalid, err
		}
		return OutcomeApplied, nil
	}
}

func defaultInt64(v, fallback int64) int64 {
	if v != 0 {
		return v
	}
	return fallback
}

// Package hrsync reconciles enterprise and user records from change events
// published by the external HR service. Messages arrive on a NATS subject,
// are parsed and scope-filtered, and relevant ones are applied to the store
// inside a retried transaction.
package hrsync

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfrancani/patrimonio/internal/model"
)

// EventKind identifies the mutation carried by an HR change event.
type EventKind string

const (
	KindEnterpriseCreated EventKind = "enterprise.created"
	KindEnterpriseUpdated EventKind = "enterprise.updated"
	KindEnterpriseDeleted EventKind = "enterprise.deleted"
	KindUserCreated       EventKind = "user.created"
	KindUserUpdated       EventKind = "user.updated"
	KindUserDeleted       EventKind = "user.deleted"
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	return string(k)
}

// Known reports whether the kind is one of the six recognized values.
func (k EventKind) Known() bool {
	switch k {
	case KindEnterpriseCreated, KindEnterpriseUpdated, KindEnterpriseDeleted,
		KindUserCreated, KindUserUpdated, KindUserDeleted:
		return true
	}
	return false
}

// Envelope is one decoded HR change event. It is built once per inbound
// message, consumed synchronously, and never persisted.
type Envelope struct {
	Kind        EventKind
	EventScope  string
	Data        json.RawMessage
	Origin      string
	StartDate   time.Time
	UpdateScope string          // optional override scope
	FullUser    json.RawMessage // optional full user snapshot, "user" key
}

// requiredFields must all be present for a message to be parseable.
var requiredFields = []string{"event", "event_scope", "data", "origin", "start_date"}

// startDateLayouts are tried in order when parsing the start_date field.
// The HR service emits ISO-8601 with or without a zone offset.
var startDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// ParseMessage decodes a raw inbound message into an Envelope.
//
// Malformed JSON and missing required fields are terminal for the message
// but not for the caller: they are logged and (nil, nil) is returned. An
// unparseable start_date is the one construction failure reported as an
// error, so callers can tell it apart from an ordinary bad message.
func ParseMessage(raw []byte, logger *slog.Logger) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		logger.Error("hrsync: failed to decode message", "error", err, "message", string(raw))
		return nil, nil
	}

	for _, f := range requiredFields {
		if _, ok := fields[f]; !ok {
			logger.Error("hrsync: message missing required field", "field", f, "message", string(raw))
			return nil, nil
		}
	}

	env := &Envelope{
		Data:     fields["data"],
		FullUser: fields["user"],
	}

	var kind, startDate string
	for key, dst := range map[string]*string{
		"event":        &kind,
		"event_scope":  &env.EventScope,
		"origin":       &env.Origin,
		"start_date":   &startDate,
		"update_scope": &env.UpdateScope,
	} {
		if rawField, ok := fields[key]; ok {
			if err := json.Unmarshal(rawField, dst); err != nil {
				logger.Error("hrsync: message field is not a string", "field", key, "error", err)
				return nil, nil
			}
		}
	}
	env.Kind = EventKind(kind)

	ts, err := parseStartDate(startDate)
	if err != nil {
		return nil, err
	}
	env.StartDate = ts

	return env, nil
}

func parseStartDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range startDateLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse start_date %q: %w", s, lastErr)
}

// Relevant reports whether the event concerns the patrimonial domain and
// must be applied. Only the six known kinds can be relevant, and one of
// event_scope or update_scope has to name the Patrimonial or All scope.
func (e *Envelope) Relevant() bool {
	if !e.Kind.Known() {
		return false
	}
	return scopeMatches(e.EventScope) || scopeMatches(e.UpdateScope)
}

func scopeMatches(scope string) bool {
	return scope == model.ScopePatrimonial || scope == model.ScopeAll
}

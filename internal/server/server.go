// Package server exposes the inventory REST API.
package server

import (
	"context"
	"log/slog"

	"github.com/mfrancani/patrimonio/internal/cache"
	"github.com/mfrancani/patrimonio/internal/events"
	"github.com/mfrancani/patrimonio/internal/store"
)

// Server holds the dependencies shared by all HTTP handlers. The product
// cache is optional; a nil cache means every read goes to the store.
type Server struct {
	store     store.Store
	publisher events.Publisher
	cache     *cache.ProductCache
	logger    *slog.Logger
}

// NewServer returns a Server backed by the given store and publisher.
func NewServer(s store.Store, p events.Publisher, c *cache.ProductCache, logger *slog.Logger) *Server {
	return &Server{
		store:     s,
		publisher: p,
		cache:     c,
		logger:    logger,
	}
}

// publish sends a product event to the bus. Best-effort; failures are
// logged but never block the HTTP response.
func (s *Server) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

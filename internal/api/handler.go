// Package api exposes the emergency dispatch HTTP surface: the chat
// endpoint driving the conversational agent, session inspection, fleet
// queries, dispatch completion, and operator push subscriptions.
package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"emergency-dispatch-backend/internal/fleet"
	"emergency-dispatch-backend/internal/notification"
	"emergency-dispatch-backend/internal/orchestrator"
	"emergency-dispatch-backend/internal/session"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	db       *gorm.DB
	registry *fleet.Registry
	sessions *session.Manager
	orch     *orchestrator.Orchestrator
	pool     *notification.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(db *gorm.DB, registry *fleet.Registry, sessions *session.Manager, orch *orchestrator.Orchestrator, pool *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		db:       db,
		registry: registry,
		sessions: sessions,
		orch:     orch,
		pool:     pool,
		webpush:  webpushOptions,
	}
}

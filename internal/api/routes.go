// Package api serves the REST surface: the appliance inventory snapshot and
// the service index.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/homescan/live-gateway/internal/inventory"
	"github.com/homescan/live-gateway/internal/observability"
)

// Handler serves inventory reads over HTTP. Writes happen only through the
// live session tools; this surface is read-only.
type Handler struct {
	store  *inventory.Store
	logger zerolog.Logger
}

// NewHandler builds the REST handler over the shared appliance store.
func NewHandler(store *inventory.Store) *Handler {
	return &Handler{
		store:  store,
		logger: observability.WithComponent("api"),
	}
}

// RegisterRoutes mounts the REST endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/inventory", h.HandleInventory)
	})
}

// HandleIndex points clients at the WebSocket endpoint.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Appliance Inventory Live API - WebSocket endpoint: /ws",
	})
}

// HandleInventory returns the current appliance catalog.
func (h *Handler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	appliances := h.store.Appliances()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":      len(appliances),
		"appliances": appliances,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

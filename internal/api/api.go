/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_delivery/internal/delivery"
)

// API exposes HTTP handlers.
type API struct {
	resolver *delivery.Service
	logger   zerolog.Logger
}

// New creates the API router wrapper.
func New(resolver *delivery.Service, logger zerolog.Logger) *API {
	return &API{
		resolver: resolver,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts API routes on the provided router.
func (a *API) Routes(r chi.Router) {
	r.Get("/", a.handleRoot)
	r.Get("/delivery_times/", a.handleDeliveryTimes)
	// Tolerate the path without the trailing slash too.
	r.Get("/delivery_times", a.handleDeliveryTimes)
}

// handleDeliveryTimes resolves available delivery dates for a store.
//
// GET /delivery_times/?store_code=<code>[&order_date=<iso-datetime>]
//
// The response envelope is fixed: a "dates" array and a nullable "error"
// object. Invalid input is the only condition reported with a 4xx status;
// an unknown store still answers 200 with the error field populated.
func (a *API) handleDeliveryTimes(w http.ResponseWriter, r *http.Request) {
	storeCode := r.URL.Query().Get("store_code")
	orderDate := r.URL.Query().Get("order_date")

	result := a.resolver.Resolve(r.Context(), storeCode, orderDate)

	status := http.StatusOK
	if result.Error != nil && result.Error.Code == delivery.CodeInvalidRequest {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

// handleRoot returns a small welcome document.
func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Huginn Delivery API. Query /delivery_times/?store_code=<code> for available delivery windows.",
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

/*
 * This file is part of Voxlate (https://github.com/voxlate/voxlate-hub).
 * Copyright (C) 2026 Voxlate Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate-hub/internal/events"
	"github.com/voxlate/voxlate-hub/internal/logging"
	"github.com/voxlate/voxlate-hub/internal/storage"
)

// TranslationEventsHandler handles HTTP requests for translation history
type TranslationEventsHandler struct {
	store *storage.TranslationEventsStore
}

// NewTranslationEventsHandler creates a new translation events handler
func NewTranslationEventsHandler(store *storage.TranslationEventsStore) *TranslationEventsHandler {
	return &TranslationEventsHandler{store: store}
}

// ListTranslationEventsResponse represents the response for listing events
type ListTranslationEventsResponse struct {
	Events     []*events.TranslationEvent `json:"events"`
	Total      int64                      `json:"total"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalPages int                        `json:"total_pages"`
}

// HandleTranslationEvents handles GET /api/events
func (h *TranslationEventsHandler) HandleTranslationEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.listTranslationEvents(w, r)
}

// HandleTranslationEventByID handles GET /api/events/{id}
func (h *TranslationEventsHandler) HandleTranslationEventByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extract UUID from URL path
	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/events/"), "/")
	if len(pathParts) == 0 || pathParts[0] == "" {
		http.Error(w, "Event ID is required", http.StatusBadRequest)
		return
	}

	h.getTranslationEventByID(w, pathParts[0])
}

// listTranslationEvents handles GET /api/events
func (h *TranslationEventsHandler) listTranslationEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Pagination
	page := parseIntParam(query.Get("page"), 1)
	pageSize := parseIntParam(query.Get("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100 // Limit maximum page size
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	// Filtering
	options := storage.ListOptions{
		SourceLang: query.Get("source_lang"),
		TargetLang: query.Get("target_lang"),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
		SortBy:     query.Get("sort_by"),
		SortOrder:  strings.ToUpper(query.Get("sort_order")),
	}

	// Parse success filter
	if successStr := query.Get("success"); successStr != "" {
		if success, err := strconv.ParseBool(successStr); err == nil {
			options.Success = &success
		}
	}

	// Parse time filters
	if startTimeStr := query.Get("start_time"); startTimeStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			options.StartTime = &startTime
		}
	}
	if endTimeStr := query.Get("end_time"); endTimeStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			options.EndTime = &endTime
		}
	}

	// Get total count for pagination
	total, err := h.store.Count(options)
	if err != nil {
		logging.LogError(err, "Failed to count translation events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Get events
	eventsList, err := h.store.List(options)
	if err != nil {
		logging.LogError(err, "Failed to list translation events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	response := ListTranslationEventsResponse{
		Events:     eventsList,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}

	logging.Sugar.Infow("Translation events API request",
		"endpoint", "list",
		"page", page,
		"page_size", pageSize,
		"total_results", total,
		"filters", map[string]interface{}{
			"source_lang": options.SourceLang,
			"target_lang": options.TargetLang,
			"success":     options.Success,
		},
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// getTranslationEventByID handles GET /api/events/{id}
func (h *TranslationEventsHandler) getTranslationEventByID(w http.ResponseWriter, uuid string) {
	event, err := h.store.GetByUUID(uuid)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Translation event not found", http.StatusNotFound)
			return
		}
		logging.LogError(err, "Failed to get translation event",
			zap.String("uuid", uuid),
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logging.Sugar.Infow("Translation event retrieved via API",
		"event_uuid", uuid,
		"source_lang", event.SourceLang,
		"target_lang", event.TargetLang,
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// parseIntParam parses integer parameter with default value
func parseIntParam(param string, defaultValue int) int {
	if param == "" {
		return defaultValue
	}

	if value, err := strconv.Atoi(param); err == nil {
		return value
	}

	return defaultValue
}

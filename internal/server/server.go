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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/voxlate/voxlate-hub/internal/api"
	"github.com/voxlate/voxlate-hub/internal/config"
	"github.com/voxlate/voxlate-hub/internal/events"
	"github.com/voxlate/voxlate-hub/internal/logging"
	"github.com/voxlate/voxlate-hub/internal/messaging"
	"github.com/voxlate/voxlate-hub/internal/model"
	"github.com/voxlate/voxlate-hub/internal/pipeline"
	"github.com/voxlate/voxlate-hub/internal/security"
	"github.com/voxlate/voxlate-hub/internal/storage"
)

// maxUploadBytes bounds the multipart form held in memory per request
const maxUploadBytes = 32 << 20

// Server is the Voxlate hub: the HTTP boundary around the translation
// pipeline plus its supporting services (history store, NATS publisher).
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	server *http.Server

	holder   *model.Holder
	pipeline *pipeline.Pipeline

	languages     *config.LanguageSet
	db            *storage.Database
	store         *storage.TranslationEventsStore
	eventsHandler *api.TranslationEventsHandler
	nats          *messaging.NATSService

	// Server context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server backed by the configured REST inference engine
func New(cfg *config.Config) (*Server, error) {
	holder := model.NewHolder(func() (model.Translator, error) {
		return model.NewSeamlessClient(cfg.Engine)
	}, cfg.Engine.SerializeInference)

	return NewWithEngine(cfg, holder)
}

// NewWithEngine creates a server around an existing engine holder. Tests
// use this to substitute an in-process engine.
func NewWithEngine(cfg *config.Config, holder *model.Holder) (*Server, error) {
	mux := http.NewServeMux()
	ctx, cancel := context.WithCancel(context.Background())

	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: cfg.Server.DBPath})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open translation history database: %w", err)
	}
	store := storage.NewTranslationEventsStore(db)

	nats, err := messaging.NewNATSService(cfg.NATS.URL)
	if err != nil {
		cancel()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create NATS service: %w", err)
	}
	// Event publishing is best-effort; the hub serves translations with or
	// without a broker.
	if err := nats.Connect(); err != nil {
		logging.Sugar.Warnw("⚠️  NATS unavailable, translation events will not be published",
			"nats_url", cfg.NATS.URL, "error", err)
	}

	s := &Server{
		cfg:           cfg,
		mux:           mux,
		holder:        holder,
		pipeline:      pipeline.New(holder),
		languages:     config.NewLanguageSet(cfg.Languages.Codes),
		db:            db,
		store:         store,
		eventsHandler: api.NewTranslationEventsHandler(store),
		nats:          nats,
		ctx:           ctx,
		cancel:        cancel,
	}

	s.server = &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      s.mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.routes()

	return s, nil
}

// Start starts the server and, when configured, warms up the engine
func (s *Server) Start() error {
	if s.cfg.Engine.WarmupOnStart {
		if err := s.holder.Load(); err != nil {
			return fmt.Errorf("engine warmup failed: %w", err)
		}
	}

	logging.Sugar.Infow("🚀 Voxlate Hub starting",
		"http_addr", s.server.Addr,
		"engine_url", s.cfg.Engine.URL,
		"languages", s.languages.Len())

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server and its services
func (s *Server) Stop() error {
	logging.Sugar.Infow("🛑 Shutting down Voxlate Hub")

	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.nats.Close()

	if err := s.holder.Close(); err != nil {
		logging.LogError(err, "Failed to close engine")
	}

	if err := s.db.Close(); err != nil {
		logging.LogError(err, "Failed to close database")
	}

	logging.Sugar.Infow("✅ Voxlate Hub shut down successfully")
	return nil
}

// Handler exposes the route mux for in-process tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// routes sets up HTTP routing
func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/translate", s.handleTranslate)
	s.mux.HandleFunc("/api/languages", s.handleLanguages)
	s.mux.HandleFunc("/api/events", s.eventsHandler.HandleTranslationEvents)
	s.mux.HandleFunc("/api/events/", s.eventsHandler.HandleTranslationEventByID)

	logging.Sugar.Infow("🌐 HTTP routes configured",
		"translate_endpoint", "/translate",
		"languages_endpoint", "/api/languages",
		"events_endpoint", "/api/events")
}

// handleHealth reports liveness plus whether the engine singleton has
// been initialized. A hub that has not served a translation yet reports
// model_loaded=false while still being healthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":       "ok",
		"timestamp":    time.Now(),
		"model_loaded": s.holder.Ready(),
		"engine_url":   s.cfg.Engine.URL,
		"nats":         s.nats.IsConnected(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, health); err != nil {
		logging.Sugar.Errorw("Failed to write health response", "error", err)
	}
}

// handleLanguages returns the configured language code set
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, map[string]interface{}{
		"languages": s.languages.Codes(),
	}); err != nil {
		logging.Sugar.Errorw("Failed to write languages response", "error", err)
	}
}

// errorResponse is the JSON body for failed translation requests
type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// handleTranslate runs one audio buffer through the translation pipeline.
// Accepts multipart/form-data with an "audio" file plus "src_lang" and
// "tgt_lang" fields, and answers with the translated WAV bytes.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form: " + err.Error()})
		return
	}

	srcLang := r.FormValue("src_lang")
	tgtLang := r.FormValue("tgt_lang")
	if srcLang == "" || tgtLang == "" {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "src_lang and tgt_lang are required"})
		return
	}

	if err := s.checkLanguage(srcLang); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "unsupported src_lang: " + security.SanitizeLogInput(srcLang)})
		return
	}
	if err := s.checkLanguage(tgtLang); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "unsupported tgt_lang: " + security.SanitizeLogInput(tgtLang)})
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "audio file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	rawBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "failed to read audio upload"})
		return
	}
	if len(rawBytes) == 0 {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "audio upload is empty"})
		return
	}

	requestID := uuid.NewString()
	event := events.NewTranslationEvent(requestID, srcLang, tgtLang)
	event.SetInputAudio(rawBytes)

	logging.LogPipelineStage(requestID, "received")

	result, err := s.pipeline.Run(r.Context(), rawBytes, srcLang, tgtLang)
	if err != nil {
		s.respondPipelineError(w, event, err)
		return
	}

	event.SetClipMetadata(result.InputDuration, result.InputSampleRate, result.InputChannels)
	event.SetCompleted(result.OutputDuration)
	s.recordEvent(event)

	logging.LogPipelineStage(requestID, "completed")

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.WAV)))
	w.Header().Set("X-Request-ID", requestID)
	if _, err := w.Write(result.WAV); err != nil {
		logging.Sugar.Errorw("Failed to write translation response", "error", err, "request_id", requestID)
	}
}

// checkLanguage validates shape first, then membership in the configured set
func (s *Server) checkLanguage(code string) error {
	if err := security.ValidateLanguageCode(code); err != nil {
		return err
	}
	if !s.languages.Supported(code) {
		return fmt.Errorf("language %s not in configured set", code)
	}
	return nil
}

// respondPipelineError maps a pipeline failure to an HTTP status and
// records the failed event. Client-side input problems map to 400, engine
// failures to 502, encoder malfunctions to 500.
func (s *Server) respondPipelineError(w http.ResponseWriter, event *events.TranslationEvent, err error) {
	stageErr, ok := pipeline.AsStageError(err)
	if !ok {
		event.SetFailed("received", "", err)
		s.recordEvent(event)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	event.SetFailed(stageErr.Stage.String(), string(stageErr.Kind), stageErr.Err)
	s.recordEvent(event)

	status := http.StatusInternalServerError
	switch stageErr.Kind {
	case pipeline.KindDecode:
		status = http.StatusBadRequest
	case pipeline.KindInference, pipeline.KindEmptyOutput:
		status = http.StatusBadGateway
	case pipeline.KindEncode:
		status = http.StatusInternalServerError
	}

	logging.Sugar.Warnw("Translation request failed",
		"request_id", event.RequestID,
		"stage", stageErr.Stage.String(),
		"kind", string(stageErr.Kind),
		"error", stageErr.Err)

	writeError(w, status, errorResponse{
		Error: stageErr.Err.Error(),
		Stage: stageErr.Stage.String(),
		Kind:  string(stageErr.Kind),
	})
}

// recordEvent persists and publishes a translation event, best-effort
func (s *Server) recordEvent(event *events.TranslationEvent) {
	if err := s.store.Insert(event); err != nil {
		logging.LogError(err, "Failed to store translation event")
	}

	if s.nats.IsConnected() {
		if err := s.nats.PublishTranslation(event); err != nil {
			logging.LogError(err, "Failed to publish translation event")
		}
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, data interface{}) error {
	return json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := writeJSON(w, body); err != nil {
		logging.Sugar.Errorw("Failed to write error response", "error", err)
	}
}

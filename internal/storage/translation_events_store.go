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

package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/voxlate/voxlate-hub/internal/events"
)

// TranslationEventsStore handles database operations for translation events
type TranslationEventsStore struct {
	db *Database
}

// NewTranslationEventsStore creates a new translation events store
func NewTranslationEventsStore(db *Database) *TranslationEventsStore {
	return &TranslationEventsStore{db: db}
}

// Insert stores a new translation event in the database
func (s *TranslationEventsStore) Insert(event *events.TranslationEvent) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid translation event: %w", err)
	}

	query := `
		INSERT INTO translation_events (
			uuid, request_id, timestamp,
			source_lang, target_lang,
			audio_hash, input_duration, sample_rate, channels,
			output_duration, stage, error_kind, error_message,
			processing_time_ms, success
		) VALUES (
			?, ?, ?,
			?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?
		)`

	_, err := s.db.DB().Exec(query,
		event.UUID, event.RequestID, event.Timestamp,
		event.SourceLang, event.TargetLang,
		event.AudioHash, event.InputDuration, event.SampleRate, event.Channels,
		event.OutputDuration, event.Stage, event.ErrorKind, event.ErrorMessage,
		event.ProcessingTime, event.Success,
	)

	if err != nil {
		return fmt.Errorf("failed to insert translation event: %w", err)
	}

	log.Printf("📝 Stored translation event: %s (%s -> %s, stage: %s)",
		event.UUID, event.SourceLang, event.TargetLang, event.Stage)
	return nil
}

// GetByUUID retrieves a translation event by its UUID
func (s *TranslationEventsStore) GetByUUID(uuid string) (*events.TranslationEvent, error) {
	query := selectColumns + ` WHERE uuid = ?`

	row := s.db.DB().QueryRow(query, uuid)
	return s.scanTranslationEvent(row)
}

// List retrieves translation events with pagination and filtering
func (s *TranslationEventsStore) List(options ListOptions) ([]*events.TranslationEvent, error) {
	query, args := s.buildListQuery(options)

	rows, err := s.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query translation events: %w", err)
	}
	defer rows.Close()

	var eventsList []*events.TranslationEvent
	for rows.Next() {
		event, err := s.scanTranslationEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan translation event: %w", err)
		}
		eventsList = append(eventsList, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating translation events: %w", err)
	}

	return eventsList, nil
}

// Count returns the total number of translation events matching the filter
func (s *TranslationEventsStore) Count(options ListOptions) (int64, error) {
	options.Limit = 0
	options.Offset = 0
	query, args := s.buildListQuery(options)

	countQuery := "SELECT COUNT(*) FROM (" + query + ") as filtered"

	var count int64
	err := s.db.DB().QueryRow(countQuery, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count translation events: %w", err)
	}

	return count, nil
}

// GetByAudioHash finds events for the same input audio (repeat submissions)
func (s *TranslationEventsStore) GetByAudioHash(audioHash string) ([]*events.TranslationEvent, error) {
	query := selectColumns + ` WHERE audio_hash = ? ORDER BY timestamp DESC`

	rows, err := s.db.DB().Query(query, audioHash)
	if err != nil {
		return nil, fmt.Errorf("failed to query by audio hash: %w", err)
	}
	defer rows.Close()

	var eventsList []*events.TranslationEvent
	for rows.Next() {
		event, err := s.scanTranslationEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan translation event: %w", err)
		}
		eventsList = append(eventsList, event)
	}

	return eventsList, nil
}

// Delete removes a translation event by UUID
func (s *TranslationEventsStore) Delete(uuid string) error {
	result, err := s.db.DB().Exec("DELETE FROM translation_events WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("failed to delete translation event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("translation event not found: %s", uuid)
	}

	log.Printf("🗑️  Deleted translation event: %s", uuid)
	return nil
}

// ListOptions defines filtering and pagination options
type ListOptions struct {
	// Filtering
	SourceLang string
	TargetLang string
	Success    *bool // nil = all, true = success only, false = errors only
	StartTime  *time.Time
	EndTime    *time.Time

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "timestamp", "processing_time_ms", "input_duration"
	SortOrder string // "ASC", "DESC"
}

const selectColumns = `
	SELECT uuid, request_id, timestamp,
		   source_lang, target_lang,
		   audio_hash, input_duration, sample_rate, channels,
		   output_duration, stage, error_kind, error_message,
		   processing_time_ms, success
	FROM translation_events`

// allowed sort columns; anything else falls back to timestamp
var sortColumns = map[string]bool{
	"timestamp":          true,
	"processing_time_ms": true,
	"input_duration":     true,
	"output_duration":    true,
}

// buildListQuery constructs the SQL query based on ListOptions
func (s *TranslationEventsStore) buildListQuery(options ListOptions) (string, []interface{}) {
	query := selectColumns + " WHERE 1=1"

	var args []interface{}

	if options.SourceLang != "" {
		query += " AND source_lang = ?"
		args = append(args, options.SourceLang)
	}

	if options.TargetLang != "" {
		query += " AND target_lang = ?"
		args = append(args, options.TargetLang)
	}

	if options.Success != nil {
		query += " AND success = ?"
		args = append(args, *options.Success)
	}

	if options.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, options.StartTime)
	}

	if options.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, options.EndTime)
	}

	sortBy := options.SortBy
	if !sortColumns[sortBy] {
		sortBy = "timestamp"
	}

	sortOrder := "DESC"
	if options.SortOrder == "ASC" {
		sortOrder = "ASC"
	}

	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	if options.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, options.Limit)

		if options.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, options.Offset)
		}
	}

	return query, args
}

// scanTranslationEvent scans a database row into a TranslationEvent struct
func (s *TranslationEventsStore) scanTranslationEvent(scanner interface{}) (*events.TranslationEvent, error) {
	var event events.TranslationEvent

	var row interface {
		Scan(dest ...interface{}) error
	}

	switch v := scanner.(type) {
	case *sql.Row:
		row = v
	case *sql.Rows:
		row = v
	default:
		return nil, fmt.Errorf("unsupported scanner type")
	}

	err := row.Scan(
		&event.UUID, &event.RequestID, &event.Timestamp,
		&event.SourceLang, &event.TargetLang,
		&event.AudioHash, &event.InputDuration, &event.SampleRate, &event.Channels,
		&event.OutputDuration, &event.Stage, &event.ErrorKind, &event.ErrorMessage,
		&event.ProcessingTime, &event.Success,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("translation event not found")
		}
		return nil, err
	}

	return &event, nil
}

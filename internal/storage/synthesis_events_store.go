/*
 * This file is part of speechify-go (https://github.com/loqalabs/speechify-go).
 * Copyright (C) 2025 Loqa Labs
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
	"time"

	"github.com/loqalabs/speechify-go/internal/events"
)

// SynthesisEventsStore handles database operations for synthesis events
type SynthesisEventsStore struct {
	db *Database
}

// NewSynthesisEventsStore creates a new synthesis events store
func NewSynthesisEventsStore(db *Database) *SynthesisEventsStore {
	return &SynthesisEventsStore{db: db}
}

// Insert stores a new synthesis event in the database
func (s *SynthesisEventsStore) Insert(event *events.SynthesisEvent) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid synthesis event: %w", err)
	}

	query := `
		INSERT INTO synthesis_events (
			uuid, timestamp, operation,
			voice_id, audio_format, text_length,
			status_code, duration_ms, success, error_kind, error_message
		) VALUES (
			?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?, ?
		)`

	_, err := s.db.DB().Exec(query,
		event.UUID, event.Timestamp, event.Operation,
		event.VoiceID, event.AudioFormat, event.TextLength,
		event.StatusCode, event.DurationMs, event.Success, event.ErrorKind, event.ErrorMessage,
	)

	if err != nil {
		return fmt.Errorf("failed to insert synthesis event: %w", err)
	}

	return nil
}

// GetByUUID retrieves a synthesis event by its UUID
func (s *SynthesisEventsStore) GetByUUID(uuid string) (*events.SynthesisEvent, error) {
	query := `
		SELECT uuid, timestamp, operation,
			   voice_id, audio_format, text_length,
			   status_code, duration_ms, success, error_kind, error_message
		FROM synthesis_events
		WHERE uuid = ?`

	row := s.db.DB().QueryRow(query, uuid)
	return s.scanSynthesisEvent(row)
}

// List retrieves synthesis events with pagination and filtering
func (s *SynthesisEventsStore) List(options ListOptions) ([]*events.SynthesisEvent, error) {
	query, args := s.buildListQuery(options)

	rows, err := s.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query synthesis events: %w", err)
	}
	defer rows.Close()

	var eventsList []*events.SynthesisEvent
	for rows.Next() {
		event, err := s.scanSynthesisEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan synthesis event: %w", err)
		}
		eventsList = append(eventsList, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating synthesis events: %w", err)
	}

	return eventsList, nil
}

// Count returns the total number of synthesis events matching the filter
func (s *SynthesisEventsStore) Count(options ListOptions) (int64, error) {
	options.Limit = 0
	options.Offset = 0
	query, args := s.buildListQuery(options)

	countQuery := "SELECT COUNT(*) FROM (" + query + ") as filtered"

	var count int64
	err := s.db.DB().QueryRow(countQuery, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count synthesis events: %w", err)
	}

	return count, nil
}

// GetRecentByVoice retrieves recent events for a specific voice
func (s *SynthesisEventsStore) GetRecentByVoice(voiceID string, limit int) ([]*events.SynthesisEvent, error) {
	options := ListOptions{
		VoiceID: voiceID,
		Limit:   limit,
	}
	return s.List(options)
}

// Delete removes a synthesis event by UUID
func (s *SynthesisEventsStore) Delete(uuid string) error {
	result, err := s.db.DB().Exec("DELETE FROM synthesis_events WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("failed to delete synthesis event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("synthesis event not found: %s", uuid)
	}

	return nil
}

// ListOptions defines filtering and pagination options
type ListOptions struct {
	// Filtering
	VoiceID   string
	Operation string
	Success   *bool // nil = all, true = success only, false = errors only
	StartTime *time.Time
	EndTime   *time.Time

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "timestamp", "duration_ms", "text_length"
	SortOrder string // "ASC", "DESC"
}

// buildListQuery constructs the SQL query based on ListOptions
func (s *SynthesisEventsStore) buildListQuery(options ListOptions) (string, []interface{}) {
	query := `
		SELECT uuid, timestamp, operation,
			   voice_id, audio_format, text_length,
			   status_code, duration_ms, success, error_kind, error_message
		FROM synthesis_events WHERE 1=1`

	var args []interface{}

	if options.VoiceID != "" {
		query += " AND voice_id = ?"
		args = append(args, options.VoiceID)
	}

	if options.Operation != "" {
		query += " AND operation = ?"
		args = append(args, options.Operation)
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
	switch sortBy {
	case "timestamp", "duration_ms", "text_length":
	default:
		sortBy = "timestamp"
	}

	sortOrder := options.SortOrder
	if sortOrder != "ASC" {
		sortOrder = "DESC"
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

// scanSynthesisEvent scans a database row into a SynthesisEvent struct
func (s *SynthesisEventsStore) scanSynthesisEvent(scanner interface{}) (*events.SynthesisEvent, error) {
	var event events.SynthesisEvent

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
		&event.UUID, &event.Timestamp, &event.Operation,
		&event.VoiceID, &event.AudioFormat, &event.TextLength,
		&event.StatusCode, &event.DurationMs, &event.Success, &event.ErrorKind, &event.ErrorMessage,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("synthesis event not found")
		}
		return nil, err
	}

	return &event, nil
}

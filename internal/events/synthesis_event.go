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

package events

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

// SynthesisEvent records the outcome of one synthesis operation for
// observability collaborators (NATS publisher, history store). The client
// emits these fire-and-forget; nothing in the request path depends on
// them.
type SynthesisEvent struct {
	// Core identification
	UUID      string    `json:"uuid" db:"uuid"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Operation string    `json:"operation" db:"operation"`

	// Request parameters
	VoiceID     string `json:"voice_id" db:"voice_id"`
	AudioFormat string `json:"audio_format" db:"audio_format"`
	TextLength  int    `json:"text_length" db:"text_length"`

	// Outcome
	StatusCode   int    `json:"status_code" db:"status_code"`
	DurationMs   int64  `json:"duration_ms" db:"duration_ms"`
	Success      bool   `json:"success" db:"success"`
	ErrorKind    string `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage string `json:"error_message,omitempty" db:"error_message"`
}

// NewSynthesisEvent creates an event with a generated UUID and current
// timestamp. The outcome fields are filled in by SetResult or SetError.
func NewSynthesisEvent(operation, voiceID string) *SynthesisEvent {
	return &SynthesisEvent{
		UUID:      generateUUID(),
		Timestamp: time.Now(),
		Operation: operation,
		VoiceID:   voiceID,
		Success:   true,
	}
}

// SetResult marks the event as a success.
func (se *SynthesisEvent) SetResult(statusCode int, duration time.Duration) {
	se.StatusCode = statusCode
	se.DurationMs = duration.Milliseconds()
	se.Success = true
}

// SetError marks the event as a failure. statusCode is zero when the
// request never reached the API.
func (se *SynthesisEvent) SetError(statusCode int, kind, message string) {
	se.StatusCode = statusCode
	se.ErrorKind = kind
	se.ErrorMessage = message
	se.Success = false
}

// IsValid checks the fields required before persisting or publishing.
func (se *SynthesisEvent) IsValid() error {
	if se.UUID == "" {
		return fmt.Errorf("synthesis event missing UUID")
	}
	if se.Operation == "" {
		return fmt.Errorf("synthesis event missing operation")
	}
	if se.Timestamp.IsZero() {
		return fmt.Errorf("synthesis event missing timestamp")
	}
	if !se.Success && se.ErrorKind == "" {
		return fmt.Errorf("failed synthesis event missing error kind")
	}
	return nil
}

// generateUUID generates a simple UUID without external dependencies
func generateUUID() string {
	b := make([]byte, 16)
	_, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		// Fallback to timestamp-based ID if random fails
		return fmt.Sprintf("speechify-%d", time.Now().UnixNano())
	}

	// Set version (4) and variant bits
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80

	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}

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

package security

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidVoiceID is returned when a voice ID format is invalid
	ErrInvalidVoiceID = errors.New("invalid voice ID")

	// voiceIDPattern validates voice IDs to only allow safe characters
	voiceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SanitizeLogInput removes newline characters to prevent log injection attacks
// This function should be used for all user-controlled data before logging
func SanitizeLogInput(input string) string {
	sanitized := strings.ReplaceAll(input, "\n", "")
	sanitized = strings.ReplaceAll(sanitized, "\r", "")
	return sanitized
}

// ValidateVoiceID ensures that a voice ID contains only safe characters
// before it is interpolated into a URL path. Only allows alphanumeric
// ASCII characters, dashes, and underscores.
func ValidateVoiceID(voiceID string) error {
	// Check for empty voice ID
	if voiceID == "" {
		return ErrInvalidVoiceID
	}

	// Check for path separators or parent directory references
	if strings.Contains(voiceID, "/") || strings.Contains(voiceID, "\\") || strings.Contains(voiceID, "..") {
		return ErrInvalidVoiceID
	}

	// Validate against allowed character pattern
	if !voiceIDPattern.MatchString(voiceID) {
		return ErrInvalidVoiceID
	}

	return nil
}

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

package speechify

import "fmt"

// SpeechifyError is implemented by every error returned from this package.
// Callers can match it to catch all client failures in one branch, or use
// errors.As with one of the concrete types to branch narrowly.
type SpeechifyError interface {
	error
	speechifyError()
}

// ValidationError reports bad caller input, detected either locally before
// any network call or confirmed by the API (HTTP 400/422).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) speechifyError() {}

// AuthenticationError reports a missing, expired, or rejected credential
// (HTTP 401/403, or no credential configured at all).
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string   { return e.Message }
func (e *AuthenticationError) speechifyError() {}

// APIError reports any other non-success response from the API. StatusCode
// carries the exact HTTP status for programmatic branching; ResponseBody
// holds the raw body for diagnostics.
type APIError struct {
	StatusCode   int
	Message      string
	ResponseBody []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}
func (e *APIError) speechifyError() {}

// TransportError reports a network-level failure (DNS, connection refused,
// timeout) before any HTTP status was received. It wraps the underlying
// cause for errors.Is/As inspection.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}
func (e *TransportError) speechifyError() {}
func (e *TransportError) Unwrap() error   { return e.Err }

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

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// validator is implemented by response models with required fields. A
// validation failure after a 2xx means the body did not have the expected
// shape and is reported as an APIError, not a ValidationError.
type validator interface {
	validate() error
}

// decodeResponse turns a raw (status, body) pair into either a decoded
// target or exactly one classified error. Classification order matters:
// validation and auth statuses are picked off before the generic APIError
// catch-all. The mapper never retries and never logs.
func decodeResponse(resp *rawResponse, target interface{}) error {
	if resp.status >= 200 && resp.status <= 299 {
		if target == nil {
			return nil
		}
		if err := json.Unmarshal(resp.body, target); err != nil {
			return &APIError{
				StatusCode:   resp.status,
				Message:      "malformed response body",
				ResponseBody: resp.body,
			}
		}
		if v, ok := target.(validator); ok {
			if err := v.validate(); err != nil {
				return &APIError{
					StatusCode:   resp.status,
					Message:      "malformed response body",
					ResponseBody: resp.body,
				}
			}
		}
		return nil
	}

	message := apiMessage(resp.body)

	switch resp.status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if message == "" {
			message = fmt.Sprintf("request rejected by API (status %d)", resp.status)
		}
		return &ValidationError{Message: message}

	case http.StatusUnauthorized, http.StatusForbidden:
		if message == "" {
			message = "invalid API key or expired access token"
		}
		return &AuthenticationError{Message: message}
	}

	if message == "" {
		message = fmt.Sprintf("API error: %d", resp.status)
	}
	return &APIError{
		StatusCode:   resp.status,
		Message:      message,
		ResponseBody: resp.body,
	}
}

// apiMessage extracts the human-readable message from an API error body,
// if one is present. Both "message" and "error" spellings occur.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

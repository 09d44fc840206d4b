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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// rawResponse is the uninterpreted result of one HTTP round trip. Status
// classification happens in decodeResponse, never here.
type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

// transport issues single synchronous HTTP requests against the API base
// URL. It is the only place a TransportError originates.
type transport struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func newTransport(baseURL string, timeout time.Duration) *transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &transport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// send performs exactly one round trip. No retries, no status
// interpretation.
func (t *transport) send(ctx context.Context, method, path string, header http.Header, jsonBody interface{}) (*rawResponse, error) {
	var bodyReader io.Reader
	if jsonBody != nil {
		payload, err := json.Marshal(jsonBody)
		if err != nil {
			return nil, &TransportError{Message: "failed to encode request body", Err: err}
		}
		bodyReader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, bodyReader)
	if err != nil {
		return nil, &TransportError{Message: "failed to build request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if jsonBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Message: "failed to read response body", Err: err}
	}

	return &rawResponse{
		status: resp.StatusCode,
		header: resp.Header,
		body:   body,
	}, nil
}

// close releases pooled connections. Safe to call more than once.
func (t *transport) close() {
	t.httpClient.CloseIdleConnections()
}

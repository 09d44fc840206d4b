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
	"context"
	"net/http"
	"sync"
)

// apiKeyHeader carries the long-lived API key. Access tokens use the
// standard Authorization bearer form instead; a request carries exactly
// one of the two.
const apiKeyHeader = "x-api-key"

// authenticator resolves which credential to attach to a request. The
// cached access token is read-mostly shared state: reads take the read
// lock, the single writer (token refresh) takes the write lock so a
// partially stored token is never observed.
type authenticator struct {
	apiKey string

	mu    sync.RWMutex
	token *AccessToken
}

func newAuthenticator(apiKey string, token *AccessToken) *authenticator {
	return &authenticator{
		apiKey: apiKey,
		token:  token,
	}
}

// credentialHeader returns the header contribution for the active
// credential. An unexpired access token wins over the API key.
func (a *authenticator) credentialHeader() (http.Header, error) {
	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()

	header := http.Header{}

	if token != nil {
		if !token.Expired() {
			header.Set("Authorization", "Bearer "+token.Token)
			return header, nil
		}
		if a.apiKey == "" {
			return nil, &AuthenticationError{Message: "access token expired, no fallback credential"}
		}
	}

	if a.apiKey != "" {
		header.Set(apiKeyHeader, a.apiKey)
		return header, nil
	}

	return nil, &AuthenticationError{Message: "no credential configured"}
}

// setToken stores a freshly minted token for reuse by later requests.
func (a *authenticator) setToken(token *AccessToken) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// mintToken exchanges the API key for a short-lived access token. It does
// not touch the authenticator's own state; the caller decides whether to
// cache the result. Classification failures surface unchanged.
func (a *authenticator) mintToken(ctx context.Context, t *transport) (*AccessToken, error) {
	if a.apiKey == "" {
		return nil, &AuthenticationError{Message: "no API key configured, cannot create access token"}
	}

	header := http.Header{}
	header.Set(apiKeyHeader, a.apiKey)

	resp, err := t.send(ctx, http.MethodPost, "/auth/token", header, nil)
	if err != nil {
		return nil, err
	}

	var token AccessToken
	if err := decodeResponse(resp, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

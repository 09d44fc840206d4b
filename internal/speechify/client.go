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
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/loqalabs/speechify-go/internal/config"
	"github.com/loqalabs/speechify-go/internal/events"
	"github.com/loqalabs/speechify-go/internal/logging"
	"github.com/loqalabs/speechify-go/internal/security"
)

const (
	// DefaultBaseURL is the production Speechify API base path.
	DefaultBaseURL = "https://api.sws.speechify.com/v1"

	// DefaultTimeout bounds every request unless overridden at
	// construction.
	DefaultTimeout = 30 * time.Second

	// DefaultAudioFormat is used when neither config nor options name one.
	DefaultAudioFormat = "mp3"

	// DefaultSpeed matches the API's recommended playback rate.
	DefaultSpeed float32 = 1.25
)

// EventSink receives synthesis lifecycle events. Delivery is
// fire-and-forget: the client never blocks on a sink and drops events the
// sink cannot take.
type EventSink interface {
	PublishSynthesisEvent(event *events.SynthesisEvent)
}

// Client is a typed client for the Speechify text-to-speech REST API.
// Every operation is a single stateless round trip; the only state kept
// across calls is the optionally cached access token. Safe for use from
// multiple goroutines.
type Client struct {
	cfg       config.SpeechifyConfig
	transport *transport
	auth      *authenticator
	sink      EventSink
	closeOnce sync.Once
}

// New creates a client from resolved configuration. Credentials are not
// required up front; a request without any configured credential fails
// with an AuthenticationError at call time.
func New(cfg config.SpeechifyConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var token *AccessToken
	if cfg.AccessToken != "" {
		// Caller-supplied tokens carry no expiry; the caller is
		// responsible for their lifetime.
		token = &AccessToken{Token: cfg.AccessToken, TokenType: "bearer"}
	}

	client := &Client{
		cfg:       cfg,
		transport: newTransport(cfg.BaseURL, cfg.Timeout),
		auth:      newAuthenticator(cfg.APIKey, token),
	}

	logging.LogTTSOperation("client_initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("api_key_configured", cfg.APIKey != ""),
		zap.Bool("access_token_configured", cfg.AccessToken != ""),
	)

	return client, nil
}

// SetEventSink attaches an optional collaborator that observes synthesis
// outcomes, such as a NATS publisher or a history store.
func (c *Client) SetEventSink(sink EventSink) {
	c.sink = sink
}

// Synthesize converts text to speech with the given voice. Empty text or
// voice ID fails locally with a ValidationError before any network call.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string, opts *SynthesizeOptions) (*SpeechSynthesisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Message: "text cannot be empty"}
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, &ValidationError{Message: "voice ID cannot be empty"}
	}

	request := synthesizeRequest{
		Text:        text,
		VoiceID:     voiceID,
		AudioFormat: c.cfg.AudioFormat,
		Speed:       c.cfg.Speed,
	}
	if request.AudioFormat == "" {
		request.AudioFormat = DefaultAudioFormat
	}
	if request.Speed == 0 {
		request.Speed = DefaultSpeed
	}
	if opts != nil {
		if opts.AudioFormat != "" {
			request.AudioFormat = opts.AudioFormat
		}
		if opts.Speed > 0 {
			request.Speed = opts.Speed
		}
		if opts.SampleRate > 0 {
			request.SampleRate = opts.SampleRate
		}
	}

	event := events.NewSynthesisEvent("synthesize", voiceID)
	event.TextLength = len(text)
	event.AudioFormat = request.AudioFormat

	logging.LogTTSOperation("synthesis_start",
		zap.String("voice", voiceID),
		zap.Int("text_length", len(text)),
		zap.String("format", request.AudioFormat),
	)

	start := time.Now()
	result := &SpeechSynthesisResult{}
	status, err := c.do(ctx, http.MethodPost, "/audio/speech", request, result)
	if err != nil {
		event.SetError(status, errorKind(err), err.Error())
		c.emit(event)
		return nil, err
	}

	event.SetResult(status, time.Since(start))
	c.emit(event)

	logging.LogTTSOperation("synthesis_complete",
		zap.String("voice", voiceID),
		zap.String("format", result.AudioFormat),
		zap.Duration("processing_time", time.Since(start)),
	)

	return result, nil
}

// ListVoices returns the available voices in the exact order the API
// returned them.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	var list voiceList
	if _, err := c.do(ctx, http.MethodGet, "/voices", nil, &list); err != nil {
		return nil, err
	}

	logging.LogTTSOperation("voices_listed", zap.Int("count", len(list.Voices)))
	return list.Voices, nil
}

// GetVoice retrieves one voice by ID. A missing voice surfaces as a plain
// APIError with status 404.
func (c *Client) GetVoice(ctx context.Context, voiceID string) (*Voice, error) {
	if strings.TrimSpace(voiceID) == "" {
		return nil, &ValidationError{Message: "voice ID cannot be empty"}
	}
	// Voice IDs end up in the URL path, so reject anything outside the
	// safe character set before building the request.
	if err := security.ValidateVoiceID(voiceID); err != nil {
		return nil, &ValidationError{Message: "voice ID contains invalid characters"}
	}

	voice := &Voice{}
	if _, err := c.do(ctx, http.MethodGet, "/voices/"+url.PathEscape(voiceID), nil, voice); err != nil {
		return nil, err
	}

	logging.LogTTSOperation("voice_retrieved", zap.String("voice", security.SanitizeLogInput(voiceID)))
	return voice, nil
}

// CreateAccessToken mints a short-lived access token from the configured
// API key and caches it on the client; later requests prefer it over the
// API key until it expires.
func (c *Client) CreateAccessToken(ctx context.Context) (*AccessToken, error) {
	token, err := c.auth.mintToken(ctx, c.transport)
	if err != nil {
		return nil, err
	}
	c.auth.setToken(token)

	logging.LogTTSOperation("access_token_created",
		zap.String("token_type", token.TokenType),
		zap.Int("expires_in", token.ExpiresIn),
	)

	return token, nil
}

// Close releases pooled connection resources. Calling it more than once
// is safe and performs no second teardown.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.transport.close()
		logging.LogTTSOperation("client_closed")
	})
	return nil
}

// do attaches the active credential, performs the round trip, and decodes
// the outcome. Failures from any stage propagate unchanged.
func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) (int, error) {
	header, err := c.auth.credentialHeader()
	if err != nil {
		return 0, err
	}

	resp, err := c.transport.send(ctx, method, path, header, body)
	if err != nil {
		logging.LogError(err, "Speechify API request failed",
			zap.String("method", method),
			zap.String("path", path),
		)
		return 0, err
	}

	logging.LogAPIRequest(method, path, resp.status)

	if err := decodeResponse(resp, target); err != nil {
		return resp.status, err
	}
	return resp.status, nil
}

// emit hands an event to the configured sink, if any.
func (c *Client) emit(event *events.SynthesisEvent) {
	if c.sink == nil {
		return
	}
	c.sink.PublishSynthesisEvent(event)
}

// errorKind maps a classified error to the tag recorded on synthesis
// events.
func errorKind(err error) string {
	var (
		validationErr *ValidationError
		authErr       *AuthenticationError
		apiErr        *APIError
		transportErr  *TransportError
	)

	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &authErr):
		return "authentication"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "unknown"
	}
}

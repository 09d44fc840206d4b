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
	"encoding/json"
	"errors"
	"time"
)

// Voice describes a voice available for synthesis. Instances are only ever
// constructed from decoded API responses.
type Voice struct {
	ID       string
	Name     string
	Gender   string
	Language string
}

// UnmarshalJSON accepts both the "id" and legacy "voice_id" key spellings
// the API has been observed to return.
func (v *Voice) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string `json:"id"`
		VoiceID  string `json:"voice_id"`
		Name     string `json:"name"`
		Gender   string `json:"gender"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v.ID = raw.ID
	if v.ID == "" {
		v.ID = raw.VoiceID
	}
	v.Name = raw.Name
	v.Gender = raw.Gender
	v.Language = raw.Language
	return nil
}

// voiceList decodes the voices endpoint, which returns either a bare JSON
// array or a {"voices": [...]} wrapper depending on API version. Order is
// kept exactly as returned.
type voiceList struct {
	Voices []Voice
}

func (l *voiceList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Voices)
	}

	var wrapper struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	l.Voices = wrapper.Voices
	return nil
}

// SpeechSynthesisResult holds the outcome of a successful synthesis call.
// AudioData is the base64-encoded audio exactly as the API returned it;
// decoding it (and writing files) is the caller's concern.
type SpeechSynthesisResult struct {
	AudioData   string
	AudioFormat string
	Duration    float64
	SampleRate  int
}

// UnmarshalJSON tolerates the snake_case and camelCase field spellings the
// API has shipped at different times.
func (r *SpeechSynthesisResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		AudioData     string  `json:"audio_data"`
		AudioDataAlt  string  `json:"audioData"`
		AudioFormat   string  `json:"audio_format"`
		Format        string  `json:"format"`
		Duration      float64 `json:"duration"`
		SampleRate    int     `json:"sample_rate"`
		SampleRateAlt int     `json:"sampleRate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.AudioData = raw.AudioData
	if r.AudioData == "" {
		r.AudioData = raw.AudioDataAlt
	}
	r.AudioFormat = raw.AudioFormat
	if r.AudioFormat == "" {
		r.AudioFormat = raw.Format
	}
	r.Duration = raw.Duration
	r.SampleRate = raw.SampleRate
	if r.SampleRate == 0 {
		r.SampleRate = raw.SampleRateAlt
	}
	return nil
}

func (r *SpeechSynthesisResult) validate() error {
	if r.AudioData == "" {
		return errors.New("missing audio_data")
	}
	return nil
}

// AccessToken is a short-lived credential minted from an API key. ExpiresAt
// is computed at decode time from the expires_in the API reported.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn int
	Scope     string
	ExpiresAt time.Time
}

func (t *AccessToken) UnmarshalJSON(data []byte) error {
	var raw struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Token = raw.AccessToken
	t.TokenType = raw.TokenType
	if t.TokenType == "" {
		t.TokenType = "bearer"
	}
	t.ExpiresIn = raw.ExpiresIn
	if t.ExpiresIn == 0 {
		t.ExpiresIn = 3600
	}
	t.Scope = raw.Scope
	t.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	return nil
}

func (t *AccessToken) validate() error {
	if t.Token == "" {
		return errors.New("missing access_token")
	}
	return nil
}

// Expired reports whether the token is past its expiry. Tokens without an
// expiry never expire.
func (t *AccessToken) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// SynthesizeOptions carries the optional synthesis parameters. Zero values
// fall back to the configured defaults.
type SynthesizeOptions struct {
	AudioFormat string
	Speed       float32
	SampleRate  int
}

// synthesizeRequest is the JSON body sent to the synthesis endpoint.
type synthesizeRequest struct {
	Text        string  `json:"text"`
	VoiceID     string  `json:"voice_id"`
	AudioFormat string  `json:"audio_format"`
	Speed       float32 `json:"speed,omitempty"`
	SampleRate  int     `json:"sample_rate,omitempty"`
}

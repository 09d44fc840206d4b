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
	"testing"
	"time"
)

func TestVoiceUnmarshal_IDSpellings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"id key", `{"id": "george", "name": "George"}`, "george"},
		{"voice_id key", `{"voice_id": "mia", "name": "Mia"}`, "mia"},
		{"id wins over voice_id", `{"id": "george", "voice_id": "mia"}`, "george"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var voice Voice
			if err := json.Unmarshal([]byte(tt.body), &voice); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if voice.ID != tt.want {
				t.Errorf("ID = %q, want %q", voice.ID, tt.want)
			}
		})
	}
}

func TestSpeechSynthesisResultUnmarshal_AltSpellings(t *testing.T) {
	var result SpeechSynthesisResult
	body := `{"audioData": "YXVkaW8=", "format": "wav", "sampleRate": 24000}`
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if result.AudioData != "YXVkaW8=" {
		t.Errorf("AudioData = %q, want camelCase value", result.AudioData)
	}
	if result.AudioFormat != "wav" {
		t.Errorf("AudioFormat = %q, want fallback from format key", result.AudioFormat)
	}
	if result.SampleRate != 24000 {
		t.Errorf("SampleRate = %d, want fallback from sampleRate key", result.SampleRate)
	}
}

func TestAccessTokenUnmarshal_Defaults(t *testing.T) {
	var token AccessToken
	if err := json.Unmarshal([]byte(`{"access_token": "tok"}`), &token); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if token.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want default %q", token.TokenType, "bearer")
	}
	if token.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want default %d", token.ExpiresIn, 3600)
	}
	if token.ExpiresAt.Before(time.Now()) {
		t.Error("ExpiresAt should be in the future")
	}
}

func TestAccessTokenExpired(t *testing.T) {
	fresh := AccessToken{Token: "t", ExpiresAt: time.Now().Add(time.Minute)}
	if fresh.Expired() {
		t.Error("Token expiring in a minute should not be expired")
	}

	stale := AccessToken{Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}
	if !stale.Expired() {
		t.Error("Token past its expiry should be expired")
	}

	noExpiry := AccessToken{Token: "t"}
	if noExpiry.Expired() {
		t.Error("Token without an expiry should never expire")
	}
}

func TestSynthesizeRequestMarshal(t *testing.T) {
	request := synthesizeRequest{
		Text:        "Hello",
		VoiceID:     "george",
		AudioFormat: "mp3",
		Speed:       1.25,
	}

	data, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	for _, key := range []string{"text", "voice_id", "audio_format", "speed"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Encoded request missing %q key", key)
		}
	}
	if _, ok := decoded["sample_rate"]; ok {
		t.Error("Zero sample_rate should be omitted")
	}
}

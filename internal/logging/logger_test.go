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

package logging

import (
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	// Save original environment
	originalLevel := os.Getenv("LOG_LEVEL")
	originalFormat := os.Getenv("LOG_FORMAT")
	defer func() {
		_ = os.Setenv("LOG_LEVEL", originalLevel)
		_ = os.Setenv("LOG_FORMAT", originalFormat)
	}()

	tests := []struct {
		name      string
		logLevel  string
		logFormat string
		wantErr   bool
	}{
		{
			name:      "Default values",
			logLevel:  "",
			logFormat: "",
			wantErr:   false,
		},
		{
			name:      "Info level console format",
			logLevel:  "info",
			logFormat: "console",
			wantErr:   false,
		},
		{
			name:      "Debug level JSON format",
			logLevel:  "debug",
			logFormat: "json",
			wantErr:   false,
		},
		{
			name:      "Invalid format defaults to console",
			logLevel:  "info",
			logFormat: "invalid",
			wantErr:   false,
		},
		{
			name:      "Invalid level defaults to info",
			logLevel:  "invalid",
			logFormat: "console",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set environment variables
			if tt.logLevel != "" {
				_ = os.Setenv("LOG_LEVEL", tt.logLevel)
			} else {
				_ = os.Unsetenv("LOG_LEVEL")
			}
			if tt.logFormat != "" {
				_ = os.Setenv("LOG_FORMAT", tt.logFormat)
			} else {
				_ = os.Unsetenv("LOG_FORMAT")
			}

			err := Initialize()

			if tt.wantErr {
				if err == nil {
					t.Error("Initialize() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Initialize() unexpected error: %v", err)
				return
			}

			// Verify logger was initialized
			if Logger == nil {
				t.Error("Logger should not be nil after initialization")
			}
			if Sugar == nil {
				t.Error("Sugar should not be nil after initialization")
			}

			// Clean up
			Close()
		})
	}
}

func TestInitializeWithConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  LogConfig
		wantErr bool
	}{
		{
			name: "Console format info level",
			config: LogConfig{
				Level:  "info",
				Format: "console",
			},
			wantErr: false,
		},
		{
			name: "JSON format debug level",
			config: LogConfig{
				Level:  "debug",
				Format: "json",
			},
			wantErr: false,
		},
		{
			name: "Invalid format defaults to console",
			config: LogConfig{
				Level:  "info",
				Format: "invalid",
			},
			wantErr: false,
		},
		{
			name: "Case insensitive",
			config: LogConfig{
				Level:  "INFO",
				Format: "JSON",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeWithConfig(tt.config)

			if tt.wantErr {
				if err == nil {
					t.Error("InitializeWithConfig() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("InitializeWithConfig() unexpected error: %v", err)
				return
			}

			if Logger == nil {
				t.Error("Logger should not be nil after initialization")
			}
			if Sugar == nil {
				t.Error("Sugar should not be nil after initialization")
			}

			Close()
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	// Set up test logger with observer
	core, recorded := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core)
	Sugar = Logger.Sugar()

	defer func() {
		Close()
		Logger = nil
		Sugar = nil
	}()

	t.Run("LogTTSOperation", func(t *testing.T) {
		LogTTSOperation("synthesis_start", zap.String("voice", "george"))

		logs := recorded.TakeAll()
		if len(logs) != 1 {
			t.Fatalf("Expected 1 log entry, got %d", len(logs))
		}

		fields := logs[0].ContextMap()
		if fields["component"] != "tts" {
			t.Errorf("component = %v, want %q", fields["component"], "tts")
		}
		if fields["operation"] != "synthesis_start" {
			t.Errorf("operation = %v, want %q", fields["operation"], "synthesis_start")
		}
		if fields["voice"] != "george" {
			t.Errorf("voice = %v, want %q", fields["voice"], "george")
		}
	})

	t.Run("LogAPIRequest", func(t *testing.T) {
		LogAPIRequest("POST", "/audio/speech", 200)

		logs := recorded.TakeAll()
		if len(logs) != 1 {
			t.Fatalf("Expected 1 log entry, got %d", len(logs))
		}
		if logs[0].Level != zapcore.DebugLevel {
			t.Errorf("Level = %v, want debug", logs[0].Level)
		}

		fields := logs[0].ContextMap()
		if fields["method"] != "POST" {
			t.Errorf("method = %v, want %q", fields["method"], "POST")
		}
		if fields["status"] != int64(200) {
			t.Errorf("status = %v, want 200", fields["status"])
		}
	})

	t.Run("LogError", func(t *testing.T) {
		LogError(errors.New("boom"), "Something failed", zap.String("path", "/voices"))

		logs := recorded.TakeAll()
		if len(logs) != 1 {
			t.Fatalf("Expected 1 log entry, got %d", len(logs))
		}
		if logs[0].Level != zapcore.ErrorLevel {
			t.Errorf("Level = %v, want error", logs[0].Level)
		}
	})

	t.Run("LogNATSEvent", func(t *testing.T) {
		LogNATSEvent("speechify.synthesis.completed", "published")

		logs := recorded.TakeAll()
		if len(logs) != 1 {
			t.Fatalf("Expected 1 log entry, got %d", len(logs))
		}

		fields := logs[0].ContextMap()
		if fields["subject"] != "speechify.synthesis.completed" {
			t.Errorf("subject = %v, want full subject", fields["subject"])
		}
	})

	t.Run("LogDatabaseOperation", func(t *testing.T) {
		LogDatabaseOperation("insert", "synthesis_events")

		logs := recorded.TakeAll()
		if len(logs) != 1 {
			t.Fatalf("Expected 1 log entry, got %d", len(logs))
		}

		fields := logs[0].ContextMap()
		if fields["table"] != "synthesis_events" {
			t.Errorf("table = %v, want %q", fields["table"], "synthesis_events")
		}
	})
}

func TestLoggingFunctions_NilLoggerSafe(t *testing.T) {
	Logger = nil
	Sugar = nil

	// None of these may panic when logging was never initialized.
	LogTTSOperation("synthesis_start")
	LogAPIRequest("GET", "/voices", 200)
	LogNATSEvent("subject", "published")
	LogDatabaseOperation("insert", "synthesis_events")
	LogError(errors.New("boom"), "message")
	LogWarn("message")
	Sync()
	Close()
}

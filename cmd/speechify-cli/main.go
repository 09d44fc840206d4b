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

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/loqalabs/speechify-go/internal/config"
	"github.com/loqalabs/speechify-go/internal/events"
	"github.com/loqalabs/speechify-go/internal/logging"
	"github.com/loqalabs/speechify-go/internal/messaging"
	"github.com/loqalabs/speechify-go/internal/speechify"
	"github.com/loqalabs/speechify-go/internal/storage"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file (default: ~/.speechifyrc)")
		action      = flag.String("action", "voices", "Action to perform: voices, voice, synthesize, token, history")
		voiceID     = flag.String("voice", "", "Voice ID for voice and synthesize actions")
		text        = flag.String("text", "", "Text to synthesize (reads stdin when empty)")
		audioFormat = flag.String("audio-format", "", "Audio format for synthesis (mp3, wav, ogg, aac)")
		speed       = flag.Float64("speed", 0, "Speech speed (1.0 = normal)")
		outPath     = flag.String("out", "", "Output file for synthesized audio (default: speech.<format>)")
		limit       = flag.Int("limit", 20, "Maximum entries for the history action")
		format      = flag.String("format", "table", "Output format: table, json")
	)
	flag.Parse()

	if err := logging.Initialize(); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := &speechifyCLI{cfg: cfg, format: *format}

	var runErr error
	switch *action {
	case "voices":
		runErr = cli.listVoices()
	case "voice":
		if *voiceID == "" {
			fmt.Fprintf(os.Stderr, "Error: -voice required for voice action\n")
			os.Exit(1)
		}
		runErr = cli.getVoice(*voiceID)
	case "synthesize":
		if *voiceID == "" {
			fmt.Fprintf(os.Stderr, "Error: -voice required for synthesize action\n")
			os.Exit(1)
		}
		runErr = cli.synthesize(*voiceID, *text, *audioFormat, float32(*speed), *outPath)
	case "token":
		runErr = cli.createToken()
	case "history":
		runErr = cli.history(*limit)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown action %q\n", *action)
		os.Exit(1)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

type speechifyCLI struct {
	cfg    *config.Config
	format string
}

// newClient builds the API client and wires the optional event sinks.
// The returned cleanup func closes everything and is safe to defer.
func (c *speechifyCLI) newClient() (*speechify.Client, func(), error) {
	client, err := speechify.New(c.cfg.Speechify)
	if err != nil {
		return nil, nil, err
	}

	var sinks multiSink
	var cleanups []func()

	if c.cfg.NATS.Enabled {
		publisher, err := messaging.NewPublisher(c.cfg.NATS)
		if err == nil {
			err = publisher.Connect()
		}
		if err != nil {
			// The bus is an observability collaborator; synthesis
			// still works without it.
			logging.LogWarn("NATS publisher unavailable, continuing without it")
		} else {
			sinks = append(sinks, publisher)
			cleanups = append(cleanups, publisher.Close)
		}
	}

	if c.cfg.History.Enabled {
		db, err := storage.NewDatabase(storage.DatabaseConfig{Path: c.cfg.History.DBPath})
		if err != nil {
			logging.LogWarn("History store unavailable, continuing without it")
		} else {
			sinks = append(sinks, &historySink{store: storage.NewSynthesisEventsStore(db)})
			cleanups = append(cleanups, func() { _ = db.Close() })
		}
	}

	if len(sinks) > 0 {
		client.SetEventSink(sinks)
	}

	cleanup := func() {
		_ = client.Close()
		for _, fn := range cleanups {
			fn()
		}
	}
	return client, cleanup, nil
}

func (c *speechifyCLI) listVoices() error {
	client, cleanup, err := c.newClient()
	if err != nil {
		return err
	}
	defer cleanup()

	voices, err := client.ListVoices(context.Background())
	if err != nil {
		return err
	}

	if c.format == "json" {
		return printJSON(voices)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGENDER\tLANGUAGE")
	for _, voice := range voices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", voice.ID, voice.Name, voice.Gender, voice.Language)
	}
	return w.Flush()
}

func (c *speechifyCLI) getVoice(voiceID string) error {
	client, cleanup, err := c.newClient()
	if err != nil {
		return err
	}
	defer cleanup()

	voice, err := client.GetVoice(context.Background(), voiceID)
	if err != nil {
		return err
	}

	if c.format == "json" {
		return printJSON(voice)
	}

	fmt.Printf("ID:       %s\n", voice.ID)
	fmt.Printf("Name:     %s\n", voice.Name)
	fmt.Printf("Gender:   %s\n", voice.Gender)
	fmt.Printf("Language: %s\n", voice.Language)
	return nil
}

func (c *speechifyCLI) synthesize(voiceID, text, audioFormat string, speed float32, outPath string) error {
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read text from stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}

	client, cleanup, err := c.newClient()
	if err != nil {
		return err
	}
	defer cleanup()

	opts := &speechify.SynthesizeOptions{
		AudioFormat: audioFormat,
		Speed:       speed,
	}

	result, err := client.Synthesize(context.Background(), text, voiceID, opts)
	if err != nil {
		return err
	}

	// Base64 decoding and file writing live here, not in the client.
	audio, err := base64.StdEncoding.DecodeString(result.AudioData)
	if err != nil {
		return fmt.Errorf("failed to decode audio data: %w", err)
	}

	if outPath == "" {
		ext := result.AudioFormat
		if ext == "" {
			ext = "mp3"
		}
		outPath = "speech." + ext
	}

	if err := os.WriteFile(outPath, audio, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	fmt.Printf("Wrote %d bytes to %s", len(audio), outPath)
	if result.Duration > 0 {
		fmt.Printf(" (%.2fs of audio)", result.Duration)
	}
	fmt.Println()
	return nil
}

func (c *speechifyCLI) createToken() error {
	client, cleanup, err := c.newClient()
	if err != nil {
		return err
	}
	defer cleanup()

	token, err := client.CreateAccessToken(context.Background())
	if err != nil {
		return err
	}

	if c.format == "json" {
		return printJSON(map[string]interface{}{
			"token_type": token.TokenType,
			"expires_in": token.ExpiresIn,
			"scope":      token.Scope,
		})
	}

	fmt.Println("Access token created successfully")
	fmt.Printf("Token type: %s\n", token.TokenType)
	fmt.Printf("Expires in: %d seconds\n", token.ExpiresIn)
	return nil
}

func (c *speechifyCLI) history(limit int) error {
	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: c.cfg.History.DBPath})
	if err != nil {
		return err
	}
	defer db.Close()

	store := storage.NewSynthesisEventsStore(db)
	entries, err := store.List(storage.ListOptions{Limit: limit})
	if err != nil {
		return err
	}

	if c.format == "json" {
		return printJSON(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tOPERATION\tVOICE\tFORMAT\tSTATUS\tDURATION\tRESULT")
	for _, entry := range entries {
		result := "ok"
		if !entry.Success {
			result = entry.ErrorKind
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%dms\t%s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Operation, entry.VoiceID, entry.AudioFormat,
			entry.StatusCode, entry.DurationMs, result,
		)
	}
	return w.Flush()
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// historySink records synthesis events in the SQLite history store.
type historySink struct {
	store *storage.SynthesisEventsStore
}

func (h *historySink) PublishSynthesisEvent(event *events.SynthesisEvent) {
	if err := h.store.Insert(event); err != nil {
		logging.LogError(err, "Failed to record synthesis event")
	}
}

// multiSink fans one event out to every configured sink.
type multiSink []speechify.EventSink

func (m multiSink) PublishSynthesisEvent(event *events.SynthesisEvent) {
	for _, sink := range m {
		sink.PublishSynthesisEvent(event)
	}
}

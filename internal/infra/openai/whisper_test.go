package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dictation-pdf/internal/domain"
	"dictation-pdf/internal/infra"
	"dictation-pdf/internal/infra/openai"
)

func TestWhisperClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		if header.Filename != "audio.m4a" || string(data) != "fake audio" {
			http.Error(w, "unexpected upload "+header.Filename, http.StatusBadRequest)
			return
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("language") != "en" {
			http.Error(w, "unexpected fields", http.StatusBadRequest)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"text": "I need an invoice."})
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("test-key", "en", server.URL)

	text, err := client.Transcribe(context.Background(), []byte("fake audio"), domain.FormatM4A)
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}

	if text != "I need an invoice." {
		t.Errorf("text: got %q", text)
	}
}

func TestWhisperClient_APIError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("test-key", "en", server.URL)

	_, err := client.Transcribe(context.Background(), []byte("x"), domain.FormatWAV)

	var apiErr *infra.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 APIError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("requests: got %d, want 1 (no retries)", calls)
	}
}

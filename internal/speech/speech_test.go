package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testTranscriber() *Transcriber {
	return NewTranscriber("test-key", "whisper-1", slog.Default())
}

// TestTranscribeEmptyAudio verifies empty input short-circuits to
// ErrTranscriptionUnavailable without calling the API.
func TestTranscribeEmptyAudio(t *testing.T) {
	tr := testTranscriber()
	_, err := tr.Transcribe(context.Background(), nil)
	if !errors.Is(err, ErrTranscriptionUnavailable) {
		t.Errorf("Transcribe(nil) error = %v, want ErrTranscriptionUnavailable", err)
	}
}

// TestDownloadErrors verifies non-200 responses and oversized bodies are
// handled as transcription failures.
func TestDownloadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/ok":
			fmt.Fprint(w, "OggS fake audio")
		}
	}))
	defer srv.Close()

	tr := testTranscriber()

	_, err := tr.download(context.Background(), srv.URL+"/missing")
	if !errors.Is(err, ErrTranscriptionUnavailable) {
		t.Errorf("download(404) error = %v, want ErrTranscriptionUnavailable", err)
	}

	audio, err := tr.download(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("download(ok) error = %v", err)
	}
	if string(audio) != "OggS fake audio" {
		t.Errorf("download(ok) = %q, want %q", audio, "OggS fake audio")
	}
}

// TestDownloadContextCancel verifies a canceled context aborts the fetch.
func TestDownloadContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := testTranscriber()
	if _, err := tr.download(ctx, srv.URL); err == nil {
		t.Error("download() with canceled context = nil error, want error")
	}
}

package blob

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchSuccess(t *testing.T) {
	payload := []byte("pdf-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL)
	data, err := f.Fetch("kb/kb1/manual.pdf", 1024)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("unexpected payload: %q", data)
	}
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL)
	_, err := f.Fetch("kb/missing.pdf", 1024)
	if err == nil {
		t.Fatal("expected error for missing object")
	}

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %T", err)
	}
	if dlErr.Reason != "object not found" {
		t.Errorf("unexpected reason: %q", dlErr.Reason)
	}
}

func TestFetchRejectsOversizedObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL)
	_, err := f.Fetch("kb/huge.bin", 1024)
	if err == nil {
		t.Fatal("expected error for oversized object")
	}
	if !strings.Contains(err.Error(), "1024 byte limit") {
		t.Errorf("error should name the limit, got %v", err)
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL)
	_, err := f.Fetch("kb/a.pdf", 1024)
	if err == nil {
		t.Fatal("expected error for server failure")
	}
	if !strings.Contains(err.Error(), "unexpected status 500") {
		t.Errorf("error should carry the status, got %v", err)
	}
}

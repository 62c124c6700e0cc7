package remote

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kolo/xmlrpc"
)

func TestClassifyFaultIsRejection(t *testing.T) {
	fault := xmlrpc.FaultError{Code: 2, String: "ValidationError: status invalid"}
	err := classify("update serviceLogs", fault)

	if !errors.Is(err, ErrRejected) {
		t.Fatalf("fault should classify as rejection, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("rejection must not also be unavailable")
	}
}

func TestClassifyTransportErrorIsUnavailable(t *testing.T) {
	err := classify("pull clients", fmt.Errorf("dial tcp: connection refused"))

	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("transport failure should classify as unavailable, got %v", err)
	}
}

func TestClassifyNil(t *testing.T) {
	if err := classify("create clients", nil); err != nil {
		t.Fatalf("nil should stay nil, got %v", err)
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := parseDocument("serviceLogs", map[string]interface{}{
		"id":          "r7",
		"updated_at":  "2026-03-01 09:30:00",
		"description": "replaced router",
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.ID != "r7" {
		t.Errorf("id not extracted: %q", doc.ID)
	}
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if !doc.UpdatedAt.Equal(want) {
		t.Errorf("updated_at not parsed: %v", doc.UpdatedAt)
	}
	if _, ok := doc.Fields["id"]; ok {
		t.Error("id must not leak into payload fields")
	}
	if doc.Fields["description"] != "replaced router" {
		t.Errorf("payload missing: %v", doc.Fields)
	}
}

func TestParseDocumentRejectsMissingID(t *testing.T) {
	_, err := parseDocument("clients", map[string]interface{}{
		"updated_at": "2026-03-01 09:30:00",
	})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("document without id should be rejected, got %v", err)
	}
}

func TestParseDocumentRejectsBadTimestamp(t *testing.T) {
	_, err := parseDocument("clients", map[string]interface{}{
		"id":         "r1",
		"updated_at": "yesterday",
	})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("bad timestamp should be rejected, got %v", err)
	}
}

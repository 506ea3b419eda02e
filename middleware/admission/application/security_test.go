package application

import (
	"net/http"
	"testing"

	"admission-gateway/middleware/admission/domain"
)

func TestCheckRequest_RejectsOversizedBody(t *testing.T) {
	pol := domain.SecurityPolicy{MaxRequestBytes: 1 << 20, AllowedMethods: []string{http.MethodPost}}

	rej := CheckRequest(http.MethodPost, 2_000_000, pol)
	if rej == nil {
		t.Fatalf("expected rejection for 2MB body against 1MiB limit")
	}
	if rej.Status != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rej.Status)
	}
	if rej.Error != "Request too large" {
		t.Fatalf("unexpected error field %q", rej.Error)
	}
	if rej.Message != "Request size exceeds maximum allowed size of 1MB" {
		t.Fatalf("unexpected message %q", rej.Message)
	}
}

func TestCheckRequest_RejectsMethodNotAllowed(t *testing.T) {
	pol := domain.SecurityPolicy{AllowedMethods: []string{http.MethodPost}}

	rej := CheckRequest(http.MethodGet, 0, pol)
	if rej == nil {
		t.Fatalf("expected rejection for GET against POST-only policy")
	}
	if rej.Status != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rej.Status)
	}
	if rej.Message != "Method GET is not allowed. Allowed methods: POST" {
		t.Fatalf("unexpected message %q", rej.Message)
	}
}

func TestCheckRequest_MethodListInMessage(t *testing.T) {
	pol := domain.SecurityPolicy{AllowedMethods: []string{http.MethodPost, http.MethodPut}}

	rej := CheckRequest(http.MethodDelete, 0, pol)
	if rej == nil {
		t.Fatalf("expected rejection")
	}
	if rej.Message != "Method DELETE is not allowed. Allowed methods: POST, PUT" {
		t.Fatalf("unexpected message %q", rej.Message)
	}
}

func TestCheckRequest_PassesValidRequest(t *testing.T) {
	pol := domain.SecurityPolicy{MaxRequestBytes: 1 << 20, AllowedMethods: []string{http.MethodPost}}

	if rej := CheckRequest(http.MethodPost, 512, pol); rej != nil {
		t.Fatalf("expected pass, got %+v", rej)
	}
}

func TestCheckRequest_UnknownLengthPassesSizeCheck(t *testing.T) {
	pol := domain.SecurityPolicy{MaxRequestBytes: 1 << 20, AllowedMethods: []string{http.MethodPost}}

	// Content-Length desconhecido (-1): o corte fica para o MaxBytesReader
	if rej := CheckRequest(http.MethodPost, -1, pol); rej != nil {
		t.Fatalf("expected pass with unknown content length, got %+v", rej)
	}
}

func TestCheckRequest_SizeCheckedBeforeMethod(t *testing.T) {
	pol := domain.SecurityPolicy{MaxRequestBytes: 1 << 20, AllowedMethods: []string{http.MethodPost}}

	rej := CheckRequest(http.MethodGet, 2_000_000, pol)
	if rej == nil || rej.Status != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected oversized body to win over method check, got %+v", rej)
	}
}

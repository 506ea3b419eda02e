package admission

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIdentity_PrefersFirstForwardedForToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	r.Header.Set("X-Real-IP", "9.9.9.9")
	r.Header.Set("User-Agent", "AgentX")

	if got := ClientIdentity(r); got != "1.2.3.4-AgentX" {
		t.Fatalf("expected first XFF token + UA, got %q", got)
	}
}

func TestClientIdentity_FallsBackToRealIPThenCF(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("X-Real-IP", " 5.6.7.8 ")
	r.Header.Set("User-Agent", "AgentX")

	if got := ClientIdentity(r); got != "5.6.7.8-AgentX" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("CF-Connecting-IP", "7.7.7.7")
	r.Header.Set("User-Agent", "AgentX")

	if got := ClientIdentity(r); got != "7.7.7.7-AgentX" {
		t.Fatalf("expected CF-Connecting-IP, got %q", got)
	}
}

func TestClientIdentity_UnknownWhenNothingPresent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Del("User-Agent")

	if got := ClientIdentity(r); got != "unknown-unknown" {
		t.Fatalf("expected unknown-unknown, got %q", got)
	}
}

func TestClientIdentity_StableAcrossRequests(t *testing.T) {
	mk := func() string {
		r := httptest.NewRequest(http.MethodPost, "http://example/api", nil)
		r.Header.Set("X-Forwarded-For", "1.2.3.4")
		r.Header.Set("User-Agent", "AgentX")
		return string(ClientIdentity(r))
	}
	if mk() != mk() {
		t.Fatalf("expected identity to be stable for the same caller")
	}
}

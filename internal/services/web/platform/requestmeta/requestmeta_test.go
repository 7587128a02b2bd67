package requestmeta

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsHTTPSWithPolicy(t *testing.T) {
	t.Parallel()

	if IsHTTPSWithPolicy(nil, SchemePolicy{}) {
		t.Fatalf("expected nil request to be non-https")
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	if IsHTTPSWithPolicy(req, SchemePolicy{}) {
		t.Fatalf("expected http URL to be non-https")
	}

	req = httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	if IsHTTPSWithPolicy(req, SchemePolicy{}) {
		t.Fatalf("expected forwarded header to be ignored by default")
	}

	if got := IsHTTPSWithPolicy(req, SchemePolicy{TrustForwardedProto: true}); !got {
		t.Fatalf("IsHTTPSWithPolicy() = %v, want true", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	if !IsHTTPSWithPolicy(req, SchemePolicy{}) {
		t.Fatalf("expected TLS request to be https")
	}
}

func TestSchemeIgnoresUnknownForwardedProto(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "gopher")
	if got := Scheme(req, SchemePolicy{TrustForwardedProto: true}); got != "http" {
		t.Fatalf("Scheme() = %q, want %q", got, "http")
	}
	if got := Scheme(nil, SchemePolicy{}); got != "" {
		t.Fatalf("Scheme(nil) = %q, want empty", got)
	}
}

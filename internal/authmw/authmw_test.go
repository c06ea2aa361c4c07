package authmw

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookSignature_ValidSignature(t *testing.T) {
	t.Parallel()

	h := WebhookSignature("hook-secret")(okHandler)

	body := `{"action":"opened"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", sign("hook-secret", body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestWebhookSignature_MissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	h := WebhookSignature("hook-secret")(okHandler)

	tests := []struct {
		name  string
		value string
	}{
		{"missing", ""},
		{"wrong algorithm", "sha1=deadbeef"},
		{"no prefix", "deadbeef"},
		{"uppercase prefix", "SHA256=deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
			if tt.value != "" {
				req.Header.Set("X-Hub-Signature-256", tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestWebhookSignature_InvalidSignature(t *testing.T) {
	t.Parallel()

	h := WebhookSignature("hook-secret")(okHandler)

	tests := []struct {
		name string
		sig  string
	}{
		{"wrong secret", sign("other-secret", "{}")},
		{"wrong body", sign("hook-secret", `{"tampered":true}`)},
		{"garbage digest", "sha256=nothex"},
		{"empty digest", "sha256="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
			req.Header.Set("X-Hub-Signature-256", tt.sig)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestWebhookSignature_BodyReadableDownstream(t *testing.T) {
	t.Parallel()

	const body = `{"action":"opened","issue":{"number":42}}`

	var got string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("inner read: %v", err)
		}
		got = string(b)
		w.WriteHeader(http.StatusAccepted)
	})

	h := WebhookSignature("hook-secret")(inner)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", sign("hook-secret", body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if got != body {
		t.Errorf("downstream body = %q, want original payload", got)
	}
}

func TestWebhookSignature_EmptyBody(t *testing.T) {
	t.Parallel()

	h := WebhookSignature("hook-secret")(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	req.Header.Set("X-Hub-Signature-256", sign("hook-secret", ""))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

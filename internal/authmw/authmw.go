// Package authmw provides HTTP middleware for webhook signature verification.
package authmw

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// WebhookSignature returns middleware that validates the
// X-Hub-Signature-256 header against an HMAC-SHA256 of the request body.
// Comparison uses constant-time equality to prevent timing side-channel
// attacks. The body is re-attached for downstream handlers.
func WebhookSignature(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sig := r.Header.Get("X-Hub-Signature-256")
			if !strings.HasPrefix(sig, "sha256=") {
				http.Error(w, `{"error":"missing or malformed signature header"}`, http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			mac := hmac.New(sha256.New, key)
			mac.Write(body)
			want := hex.EncodeToString(mac.Sum(nil))
			got := sig[len("sha256="):]

			if !hmac.Equal([]byte(got), []byte(want)) {
				http.Error(w, `{"error":"invalid signature"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Package webhook is a minimal HMAC-SHA256 signature verifier for
// Buildkite webhook deliveries, for a consumer wiring this validator into
// a webhook-triggered pipeline-upload flow. It does not parse webhook
// event payloads; that REST/event surface is out of this repository's
// scope.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader is the HTTP header carrying the webhook's HMAC
// signature, formatted as "timestamp=<ts>,signature=<hex>".
const SignatureHeader = "X-Buildkite-Signature"

var (
	ErrMissingSignature = errors.New("webhook: missing or malformed signature header")
	ErrInvalidSignature = errors.New("webhook: signature does not match payload")
)

// Verify checks payload against the signature header's timestamp and hex
// MAC, over the secret. The signed message is "timestamp.payload", per
// Buildkite's documented webhook signing format.
func Verify(payload []byte, signatureHeader, secret string) error {
	timestamp, signature, ok := parseSignatureHeader(signatureHeader)
	if !ok {
		return ErrMissingSignature
	}

	expected, err := hex.DecodeString(signature)
	if err != nil {
		return ErrMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(payload)

	if !hmac.Equal(mac.Sum(nil), expected) {
		return ErrInvalidSignature
	}
	return nil
}

func parseSignatureHeader(header string) (timestamp, signature string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "timestamp":
			timestamp = value
		case "signature":
			signature = value
		}
	}
	return timestamp, signature, timestamp != "" && signature != ""
}

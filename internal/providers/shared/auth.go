package shared

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ValidTimestampedSignature checks a PagerDuty-style header of the form
// "v1=<hex>" where the signed material is "<timestamp>.<body>". A header
// without the v1= prefix is rejected before any HMAC work.
func ValidTimestampedSignature(secret, timestamp string, body []byte, header string) bool {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "v1=") {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimSpace(strings.TrimPrefix(header, "v1=")))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// ValidBodySignature checks an Opsgenie-style header carrying the bare hex
// HMAC-SHA256 digest of the raw body.
func ValidBodySignature(secret string, body []byte, header string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	provided, err := hex.DecodeString(header)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// ValidPrefixedSignature checks a GitHub-style "sha256=<hex>" header over the
// raw body.
func ValidPrefixedSignature(secret string, body []byte, header string) bool {
	header = strings.TrimSpace(header)
	parts := strings.SplitN(header, "=", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "sha256") {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimSpace(parts[1]))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// SignTimestamped produces the "v1=<hex>" header value for the timestamped
// scheme.
func SignTimestamped(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return "v1=" + hex.EncodeToString(mac.Sum(nil))
}

// SignBody produces the bare hex digest for the direct-body scheme.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

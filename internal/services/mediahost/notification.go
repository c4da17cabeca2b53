package mediahost

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Verification errors
var (
	ErrBadSignature   = errors.New("notification signature mismatch")
	ErrStaleTimestamp = errors.New("notification timestamp outside freshness window")
)

// verifyNotificationSignature recomputes the expected webhook signature,
// SHA-1 hex over raw body + timestamp + API secret, and compares it in
// constant time. A non-zero maxAge also bounds how old the timestamp may be.
func verifyNotificationSignature(body []byte, timestamp, signature, apiSecret string, maxAge time.Duration) error {
	if signature == "" || timestamp == "" {
		return ErrBadSignature
	}

	expected := sha1Hex(string(body) + timestamp + apiSecret)

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrBadSignature
	}

	if maxAge > 0 {
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing notification timestamp: %w", err)
		}

		age := time.Since(time.Unix(ts, 0))
		if age > maxAge || age < -maxAge {
			return ErrStaleTimestamp
		}
	}

	return nil
}

// sha1Hex returns the lowercase hex SHA-1 digest of s
func sha1Hex(s string) string {
	h := sha1.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

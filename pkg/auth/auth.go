// Package auth implements the vendor's LMv1 request-signing scheme.
//
// A signature is HMAC-SHA256 over verb + epochMillis + body + resourcePath,
// rendered as a lowercase hex string and then base64-encoded (the vendor's
// documented two-stage encoding). Only the resource path is signed; query
// parameters are not part of the message.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
)

// AccessKey holds the secret half of an API credential pair. The key material
// is only reachable through Sign; the formatting interfaces are implemented
// so the plaintext never ends up in logs or error messages.
type AccessKey struct {
	key []byte
}

// NewAccessKey wraps a secret access key.
func NewAccessKey(secret string) AccessKey {
	return AccessKey{key: []byte(secret)}
}

// IsZero reports whether the key holds no material.
func (k AccessKey) IsZero() bool {
	return len(k.key) == 0
}

// String implements fmt.Stringer with a redacted placeholder.
func (k AccessKey) String() string {
	return "[REDACTED]"
}

// GoString keeps %#v output redacted as well.
func (k AccessKey) GoString() string {
	return "auth.AccessKey{key: [REDACTED]}"
}

// Sign computes the LMv1 signature for a request.
func (k AccessKey) Sign(verb string, epochMillis int64, body []byte, resourcePath string) string {
	mac := hmac.New(sha256.New, k.key)
	io.WriteString(mac, verb)
	io.WriteString(mac, strconv.FormatInt(epochMillis, 10))
	mac.Write(body)
	io.WriteString(mac, resourcePath)

	digest := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(digest))
}

// Credentials is an API credential pair: the public access ID and the secret
// access key.
type Credentials struct {
	AccessID string
	Key      AccessKey
}

// IsZero reports whether either half of the pair is missing.
func (c Credentials) IsZero() bool {
	return c.AccessID == "" || c.Key.IsZero()
}

// Header builds the full Authorization header value for a request:
// "LMv1 {accessId}:{signature}:{epochMillis}".
func (c Credentials) Header(verb string, epochMillis int64, body []byte, resourcePath string) string {
	sig := c.Key.Sign(verb, epochMillis, body, resourcePath)
	return fmt.Sprintf("LMv1 %s:%s:%d", c.AccessID, sig, epochMillis)
}

package app

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint digests an operation's identity plus its serialized body so that
// idempotency-key reuse across different logical requests can be detected.
// A nil body hashes as the JSON literal "null" to keep body-less operations
// (like confirm) stable.
func Fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(strings.ToUpper(method)))
	h.Write([]byte("|"))
	h.Write([]byte(path))
	h.Write([]byte("|"))
	if body == nil {
		h.Write([]byte("null"))
	} else {
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil))
}

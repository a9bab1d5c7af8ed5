package strex

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Fingerprint computes the stable identity of one literal occurrence.
// It hashes the file path, the decoded literal text, the enclosing call
// context, and an occurrence ordinal so that identical literals in the
// same file stay distinguishable across rescans.
func Fingerprint(filePath, text, callContext string, ordinal int) string {
	h := sha256.New()
	h.Write([]byte(filePath))
	h.Write([]byte{0})
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(callContext))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(ordinal)))
	return hex.EncodeToString(h.Sum(nil))
}

// TextHash computes the SHA-256 hash of the trimmed literal text. Used as
// the location-independent cache key component.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// CacheKey builds a translation-cache key from a text hash and the target
// language, so the same literal is never re-billed for the same language.
func CacheKey(hash, targetLang string) string {
	return hash + ":" + targetLang
}

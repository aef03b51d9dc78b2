// Package topic generates and validates ntfy topic names.
//
// Topics scope notification delivery: anyone who knows a topic name can
// publish to it and read from it, so generated topics draw from crypto/rand
// with enough entropy to make guessing impractical.
package topic

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest topic name the public ntfy server accepts.
const MaxLength = 64

// Encoding selects the output alphabet for Random.
type Encoding int

const (
	// EncodingBase64 emits standard base64 with padding stripped.
	EncodingBase64 Encoding = 1
	// EncodingHex emits lowercase hexadecimal.
	EncodingHex Encoding = 2
	// EncodingBase64URL emits url-safe base64 with padding stripped.
	EncodingBase64URL Encoding = 3
)

var ErrInvalid = errors.New("invalid topic")

// Random returns a topic derived from length bytes of crypto/rand output,
// rendered in the requested encoding. Encodings other than base64 and hex
// fall back to url-safe base64.
func Random(length int, encoding Encoding) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: random length must be positive", ErrInvalid)
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	switch encoding {
	case EncodingBase64:
		return strings.TrimRight(base64.StdEncoding.EncodeToString(buf), "="), nil
	case EncodingHex:
		return hex.EncodeToString(buf), nil
	default:
		return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "="), nil
	}
}

// HMAC derives a stable topic from a secret key and an identifier using
// HMAC-SHA256. The same inputs always produce the same topic, which lets
// multiple devices agree on a topic without exchanging it.
func HMAC(secret, identifier string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: hmac secret must not be empty", ErrInvalid)
	}
	if identifier == "" {
		return "", fmt.Errorf("%w: hmac identifier must not be empty", ErrInvalid)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(identifier))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// UUID returns a random UUID topic.
func UUID() string {
	return uuid.NewString()
}

// Compound combines two independently random parts, optionally prefixed with
// a digest of a base topic: sha256(base)[:16]-hex(8)-b64url(12).
func Compound(base string) (string, error) {
	part1Bytes := make([]byte, 8)
	if _, err := rand.Read(part1Bytes); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	part2Bytes := make([]byte, 12)
	if _, err := rand.Read(part2Bytes); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	part1 := hex.EncodeToString(part1Bytes)
	part2 := strings.TrimRight(base64.URLEncoding.EncodeToString(part2Bytes), "=")

	if base != "" {
		sum := sha256.Sum256([]byte(base))
		return fmt.Sprintf("%s-%s-%s", hex.EncodeToString(sum[:])[:16], part1, part2), nil
	}
	return fmt.Sprintf("%s-%s", part1, part2), nil
}

// Normalize trims whitespace and applies Unicode NFC so visually identical
// topic names compare equal before validation.
func Normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Validate reports whether name is a usable ntfy topic: non-empty, at most
// MaxLength characters, drawn from [A-Za-z0-9_-].
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("%w: topic must not be empty", ErrInvalid)
	}
	if len(name) > MaxLength {
		return fmt.Errorf("%w: topic exceeds %d characters", ErrInvalid, MaxLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return fmt.Errorf("%w: topic contains disallowed character %q", ErrInvalid, r)
		}
	}
	return nil
}

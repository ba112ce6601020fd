package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. The salt travels inside the encoded hash string so a
// stored credential stays verifiable on its own.
const (
	pbkdf2Iterations = 10000
	pbkdf2SaltLen    = 32
	pbkdf2KeyLen     = 32
)

// HashPassword derives a credential hash from a plaintext password using
// PBKDF2-SHA256 with a fresh random salt. The result has the form
// pbkdf2-sha256$<iterations>$<salt>$<key> with base64-encoded salt and key.
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	return fmt.Sprintf("pbkdf2-sha256$%d$%s$%s",
		pbkdf2Iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks a plaintext password against an encoded credential
// hash. Returns true if the password matches.
func VerifyPassword(password, encoded string) (bool, error) {
	iterations, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := pbkdf2.Key([]byte(password), salt, iterations, len(key), sha256.New)

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decodeHash(encoded string) (iterations int, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 {
		return 0, nil, nil, fmt.Errorf("invalid credential hash format")
	}
	if parts[0] != "pbkdf2-sha256" {
		return 0, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[0])
	}

	if _, err := fmt.Sscanf(parts[1], "%d", &iterations); err != nil || iterations <= 0 {
		return 0, nil, nil, fmt.Errorf("invalid iteration count: %s", parts[1])
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) == 0 {
		return 0, nil, nil, fmt.Errorf("empty derived key")
	}

	return iterations, salt, key, nil
}

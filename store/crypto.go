package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	// Format version
	formatVersion = 0x01

	// Cryptographic parameters
	saltSize    = 16
	keySize     = 32
	nonceSize   = 12
	memory      = 64 * 1024 // 64 MB
	iterations  = 3
	parallelism = 4

	// Minimum blob size: version(1) + salt(16) + nonce(12) + min ciphertext(1)
	minBlobSize = 1 + saltSize + nonceSize + 1
)

// zero overwrites the given byte slice with zeros
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// deriveKey derives a 32-byte key from a passphrase and salt using Argon2id.
// The key is never stored; it exists only for the duration of one seal or
// open.
func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, iterations, memory, uint8(parallelism), keySize)
}

// seal encrypts a value with a passphrase using Argon2id + AES-256-GCM.
// Blob layout: [version(1B)][salt(16B)][nonce(12B)][ciphertext(N)].
func seal(value []byte, passphrase string) ([]byte, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey([]byte(passphrase), salt)
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, value, nil)

	blob := []byte{formatVersion}
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return blob, nil
}

// open decrypts a sealed blob with the passphrase. Tampered or truncated
// blobs and wrong passphrases all fail authentication.
func open(blob []byte, passphrase string) ([]byte, error) {
	if len(blob) < minBlobSize {
		return nil, fmt.Errorf("invalid blob length: %d (minimum: %d)", len(blob), minBlobSize)
	}
	if blob[0] != formatVersion {
		return nil, fmt.Errorf("unsupported format version: %d", blob[0])
	}

	salt := blob[1 : 1+saltSize]
	nonce := blob[1+saltSize : 1+saltSize+nonceSize]
	ciphertext := blob[1+saltSize+nonceSize:]

	key := deriveKey([]byte(passphrase), salt)
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	value, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return value, nil
}

// Package vault encrypts and decrypts shop bot tokens at rest.
//
// Ciphertexts are AES-256-CBC with PKCS#7 padding and a fresh random IV per
// encryption, serialized as hex(iv) + ":" + hex(ciphertext).
package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	keyLength = 32
	separator = ":"
)

var (
	// ErrConfiguration is returned when no encryption secret is configured.
	ErrConfiguration = errors.New("encryption secret is not configured")
	// ErrMalformedCiphertext is returned when a ciphertext cannot be parsed or decrypted.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// Vault is safe for concurrent use.
type Vault struct {
	key []byte
}

// New derives the AES key from secret. An empty secret is accepted here and
// reported by Encrypt and Decrypt, so a missing secret never blocks startup.
func New(secret string) *Vault {
	if secret == "" {
		return &Vault{}
	}
	return &Vault{key: deriveKey(secret)}
}

// deriveKey keeps the first 32 characters of base64(sha256(secret)) so tokens
// stored by earlier deployments stay readable.
func deriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	encoded := base64.StdEncoding.EncodeToString(sum[:])
	return []byte(encoded[:keyLength])
}

// Encrypt returns hex(iv):hex(ciphertext) for plaintext.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if len(v.key) == 0 {
		return "", ErrConfiguration
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + separator + hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	if len(v.key) == 0 {
		return "", ErrConfiguration
	}

	ivHex, dataHex, found := strings.Cut(ciphertext, separator)
	if !found {
		return "", fmt.Errorf("%w: missing separator", ErrMalformedCiphertext)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("%w: invalid iv encoding: %v", ErrMalformedCiphertext, err)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformedCiphertext, aes.BlockSize, len(iv))
	}

	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", fmt.Errorf("%w: invalid payload encoding: %v", ErrMalformedCiphertext, err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: payload is not a whole number of blocks", ErrMalformedCiphertext)
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	plain, err := unpad(out, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return string(plain), nil
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty payload")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}

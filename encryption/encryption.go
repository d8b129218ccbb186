package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const keySize = 32

var (
	// ErrMalformedToken reports a token that does not match the
	// hex(iv):hex(ciphertext) storage contract.
	ErrMalformedToken = errors.New("malformed cipher token")

	// ErrDecrypt reports a wrong key or corrupted ciphertext.
	ErrDecrypt = errors.New("failed to decrypt content")
)

// Cipher encrypts and decrypts message content with AES-256-CBC. The key
// is long-lived configuration shared by all calls; rotating it makes
// previously stored content unreadable.
type Cipher struct {
	block cipher.Block
}

// New builds a Cipher from a 64-character hex key (32 bytes).
func New(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("message key is not valid hex: %w", err)
	}

	if len(key) != keySize {
		return nil, fmt.Errorf("invalid message key length: got %d bytes, want %d", len(key), keySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &Cipher{block: block}, nil
}

// Encrypt returns hex(iv):hex(ciphertext) with a fresh random IV per
// call, so encrypting the same plaintext twice yields different tokens.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Tokens that do not match the storage shape
// fail with ErrMalformedToken; a wrong key or corrupted ciphertext fails
// with ErrDecrypt.
func (c *Cipher) Decrypt(token string) (string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return "", ErrMalformedToken
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", ErrMalformedToken
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrMalformedToken
	}

	if len(iv) != aes.BlockSize {
		return "", ErrMalformedToken
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrDecrypt
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(unpadded), nil
}

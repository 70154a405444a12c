// Package cipher implements the symmetric codec used to carry credentials
// over the wire: AES in CBC mode with PKCS#7 padding, hex-encoded uppercase.
// Key and IV are fixed by configuration so the output is deterministic and
// byte-for-byte compatible with the legacy gateway.
package cipher

import (
	"bytes"
	"crypto/aes"
	cryptocipher "crypto/cipher"
	"encoding/hex"
	"fmt"
	"strings"

	"dirgate/internal/domain"
	dErrors "dirgate/pkg/domain-errors"
)

// Codec encrypts and decrypts credential strings with a fixed key and IV.
type Codec struct {
	block cryptocipher.Block
	iv    []byte
}

// New validates the key and IV lengths and builds a codec. The key must be
// 16, 24 or 32 bytes; the IV must match the AES block size.
func New(key, iv string) (*Codec, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("cipher key: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("cipher iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	return &Codec{block: block, iv: []byte(iv)}, nil
}

// Encrypt returns the uppercase hex ciphertext of plaintext. Deterministic:
// the same plaintext always yields the same ciphertext under one configuration.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	padded := pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cryptocipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return strings.ToUpper(hex.EncodeToString(out)), nil
}

// Decrypt is the inverse of Encrypt. Malformed hex, a ciphertext that is not
// block-aligned, or invalid padding all map to an invalid-credentials error.
func (c *Codec) Decrypt(hexCiphertext string) (string, error) {
	raw, err := hex.DecodeString(hexCiphertext)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, domain.MsgBadCipherFormat)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, domain.MsgBadCipherFormat)
	}
	out := make([]byte, len(raw))
	cryptocipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	unpadded, err := unpad(out, aes.BlockSize)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, domain.MsgBadCipherFormat)
	}
	return string(unpadded), nil
}

// SplitCredentials splits a decrypted payload on the first space into
// username and password. A single token means an empty password; anything
// after the second token is discarded. An empty payload is rejected.
func SplitCredentials(plaintext string) (username, password string, err error) {
	fields := strings.SplitN(plaintext, " ", 3)
	if len(fields) == 0 || fields[0] == "" {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, domain.MsgCredentialsInvalid)
	}
	if len(fields) == 1 {
		return fields[0], "", nil
	}
	return fields[0], fields[1], nil
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}

// Copyright (c) 2026 Reelgate. All rights reserved.

package videogate

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation parameters. The passphrase comes from configuration and is
// shared by every instance, so the salt only provides domain separation —
// it is a constant, not a secret.
const (
	keySalt       = "reelgate/video-grant/v1"
	keyIterations = 210_000
	keyLength     = 32
)

// Codec seals and opens video grant tokens and encrypted asset URLs using
// AES-256-GCM under a passphrase-derived key.
//
// # Encoding
//
// Output is base64 (URL-safe, unpadded) over nonce||ciphertext, so tokens
// survive transport as query parameters. GCM authenticates the ciphertext:
// flipping any byte of a token makes it fail to open, which is what gives
// the validator its tamper-rejection property.
//
// # Failure Mode
//
// Every operation fails closed. There is no fallback that returns plaintext
// on encryption failure — a caller either gets a sealed token or an error.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives the AES key from the configured passphrase and prepares
// the AEAD. Key derivation runs once at startup, not per request.
func NewCodec(passphrase string) (*Codec, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("videogate: token passphrase must not be empty")
	}

	key := pbkdf2.Key([]byte(passphrase), []byte(keySalt), keyIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("videogate: failed to initialize cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("videogate: failed to initialize GCM: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Seal encrypts a payload into an opaque URL-safe token string.
func (codec *Codec) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, codec.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("videogate: failed to generate nonce: %w", err)
	}

	sealed := codec.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token produced by [Codec.Seal].
//
// Any decoding or authentication failure yields an error; a token sealed
// under a different passphrase never yields plaintext.
func (codec *Codec) Open(token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("videogate: token is not valid base64: %w", err)
	}

	nonceSize := codec.aead.NonceSize()
	if len(raw) < nonceSize+1 {
		return nil, fmt.Errorf("videogate: token too short")
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := codec.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("videogate: token failed authentication: %w", err)
	}

	return plaintext, nil
}

// EncryptURL seals a resolved asset URL for the direct-access negotiation
// response.
//
// There is deliberately no plaintext fallback when encryption fails: on
// error the caller gets nothing, never the asset location.
func (codec *Codec) EncryptURL(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("videogate: cannot encrypt empty URL")
	}
	return codec.Seal([]byte(url))
}

// DecryptURL opens a URL sealed by [Codec.EncryptURL].
func (codec *Codec) DecryptURL(token string) (string, error) {
	plaintext, err := codec.Open(token)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Copyright (c) 2026 Reelgate. All rights reserved.

package videogate

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestCodec_SealOpen verifies that sealed payloads open back to the original
bytes and that sealing is non-deterministic (fresh nonce per call).
*/
func TestCodec_SealOpen(t *testing.T) {
	codec, err := NewCodec("test-passphrase")
	require.NoError(t, err)

	plaintext := []byte(`{"lesson_id":"intro-101"}`)

	first, err := codec.Seal(plaintext)
	require.NoError(t, err)
	second, err := codec.Seal(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each seal must use a fresh nonce")

	opened, err := codec.Open(first)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

/*
TestCodec_OpenRejectsTampering flips every byte of a sealed token in turn
and asserts none of the mutations open.
*/
func TestCodec_OpenRejectsTampering(t *testing.T) {
	codec, err := NewCodec("test-passphrase")
	require.NoError(t, err)

	token, err := codec.Seal([]byte("https://assets.example.com/lesson.mp4"))
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)

	for i := range raw {
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		mutated[i] ^= 0x01

		_, err := codec.Open(base64.RawURLEncoding.EncodeToString(mutated))
		assert.Error(t, err, "byte %d", i)
	}
}

/*
TestCodec_OpenRejectsGarbage covers malformed inputs that must never reach
the cipher: bad base64, truncated tokens, empty strings.
*/
func TestCodec_OpenRejectsGarbage(t *testing.T) {
	codec, err := NewCodec("test-passphrase")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not_base64", "!!not-base64!!"},
		{"too_short", base64.RawURLEncoding.EncodeToString([]byte("tiny"))},
		{"standard_base64_padding", "QUJDRA=="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Open(tt.token)
			assert.Error(t, err)
		})
	}
}

/*
TestCodec_WrongPassphrase ensures a token sealed under one passphrase never
opens under another.
*/
func TestCodec_WrongPassphrase(t *testing.T) {
	sealer, err := NewCodec("passphrase-one")
	require.NoError(t, err)
	opener, err := NewCodec("passphrase-two")
	require.NoError(t, err)

	token, err := sealer.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = opener.Open(token)
	assert.Error(t, err)
}

/*
TestCodec_EncryptURL covers the URL helpers, including the refusal to seal
an empty URL.
*/
func TestCodec_EncryptURL(t *testing.T) {
	codec, err := NewCodec("test-passphrase")
	require.NoError(t, err)

	const assetURL = "https://videos.ctfassets.net/space/lesson-4.mp4"

	sealed, err := codec.EncryptURL(assetURL)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "ctfassets", "ciphertext must not expose the asset host")

	opened, err := codec.DecryptURL(sealed)
	require.NoError(t, err)
	assert.Equal(t, assetURL, opened)

	_, err = codec.EncryptURL("")
	assert.Error(t, err)
}

/*
TestNewCodec_EmptyPassphrase guards the startup invariant.
*/
func TestNewCodec_EmptyPassphrase(t *testing.T) {
	_, err := NewCodec("")
	assert.Error(t, err)
}

// Copyright (c) 2026 Reelgate. All rights reserved.

package videogate

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelgate/reelgate/internal/platform/constants"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	codec, err := NewCodec("gate-test-passphrase")
	require.NoError(t, err)
	return NewGate(codec)
}

/*
TestGate_IssueValidate covers the happy path for anonymous and viewer-bound
grants.
*/
func TestGate_IssueValidate(t *testing.T) {
	gate := newTestGate(t)

	t.Run("anonymous_grant_validates_for_anyone", func(t *testing.T) {
		token, err := gate.Issue("intro-101", "")
		require.NoError(t, err)

		assert.True(t, gate.Validate(token, "intro-101", ""))
		assert.True(t, gate.Validate(token, "intro-101", "user-42"))
	})

	t.Run("bound_grant_validates_only_for_its_viewer", func(t *testing.T) {
		token, err := gate.Issue("intro-101", "user-42")
		require.NoError(t, err)

		assert.True(t, gate.Validate(token, "intro-101", "user-42"))
		assert.False(t, gate.Validate(token, "intro-101", "user-99"))
		assert.False(t, gate.Validate(token, "intro-101", ""))
	})

	t.Run("lesson_scope_enforced", func(t *testing.T) {
		token, err := gate.Issue("intro-101", "")
		require.NoError(t, err)

		assert.False(t, gate.Validate(token, "intro-102", ""))
		assert.False(t, gate.Validate(token, "", ""))
	})
}

/*
TestGate_IssueRequiresLesson ensures a grant can never be minted without a
lesson scope.
*/
func TestGate_IssueRequiresLesson(t *testing.T) {
	gate := newTestGate(t)

	_, err := gate.Issue("", "user-42")
	assert.Error(t, err)
}

/*
TestGate_Expiry drives the injected clock across the grant lifetime and
checks the half-open validity window [IssuedAt, ExpiresAt).
*/
func TestGate_Expiry(t *testing.T) {
	gate := newTestGate(t)

	issuedAt := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return issuedAt }

	token, err := gate.Issue("intro-101", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		isValid bool
	}{
		{"at_issue", issuedAt, true},
		{"mid_lifetime", issuedAt.Add(constants.VideoGrantTTL / 2), true},
		{"last_valid_millisecond", issuedAt.Add(constants.VideoGrantTTL - time.Millisecond), true},
		{"exactly_at_expiry", issuedAt.Add(constants.VideoGrantTTL), false},
		{"after_expiry", issuedAt.Add(constants.VideoGrantTTL + time.Millisecond), false},
		{"before_issue", issuedAt.Add(-time.Millisecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate.now = func() time.Time { return tt.at }
			assert.Equal(t, tt.isValid, gate.Validate(token, "intro-101", ""))
		})
	}
}

/*
TestGate_ValidateRejectsForeignTokens checks tokens minted under another key
and structurally broken ciphertexts.
*/
func TestGate_ValidateRejectsForeignTokens(t *testing.T) {
	gate := newTestGate(t)

	foreignCodec, err := NewCodec("another-deployment-entirely")
	require.NoError(t, err)
	foreignGate := NewGate(foreignCodec)

	foreignToken, err := foreignGate.Issue("intro-101", "")
	require.NoError(t, err)

	assert.False(t, gate.Validate(foreignToken, "intro-101", ""))
	assert.False(t, gate.Validate("", "intro-101", ""))
	assert.False(t, gate.Validate("garbage", "intro-101", ""))
}

/*
TestGate_ValidateRejectsNonGrantPayloads seals structurally wrong payloads
under the right key and asserts strict parsing rejects them.
*/
func TestGate_ValidateRejectsNonGrantPayloads(t *testing.T) {
	codec, err := NewCodec("gate-test-passphrase")
	require.NoError(t, err)
	gate := NewGate(codec)

	tests := []struct {
		name    string
		payload string
	}{
		{"not_json", "just a url string"},
		{"wrong_shape", `{"url":"https://example.com/v.mp4"}`},
		{"missing_expiry", `{"lesson_id":"intro-101","user_id":"anonymous","issued_at":1}`},
		{"unknown_field", `{"lesson_id":"intro-101","user_id":"anonymous","issued_at":1,"expires_at":99999999999999,"extra":true}`},
		{"trailing_data", `{"lesson_id":"intro-101","user_id":"anonymous","issued_at":1,"expires_at":99999999999999}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Seal([]byte(tt.payload))
			require.NoError(t, err)
			assert.False(t, gate.Validate(token, "intro-101", ""))
		})
	}
}

/*
TestGate_ProxyURL checks that the proxy path round-trips its query
parameters and never embeds the asset location.
*/
func TestGate_ProxyURL(t *testing.T) {
	gate := newTestGate(t)

	token, err := gate.Issue("intro-101", "")
	require.NoError(t, err)

	proxyURL := gate.ProxyURL(token, "intro-101")

	parsed, err := url.Parse(proxyURL)
	require.NoError(t, err)
	assert.Equal(t, constants.VideoProxyPath, parsed.Path)
	assert.Equal(t, token, parsed.Query().Get("token"))
	assert.Equal(t, "intro-101", parsed.Query().Get("lesson"))
}

// Copyright (c) 2026 Reelgate. All rights reserved.

/*
Package videogate implements the token-gated video delivery mechanism.

Visitors never see the real location of a lesson's video. Instead the page
layer negotiates a short-lived encrypted grant token and receives a
same-origin proxy URL; the proxy validates the grant on every request and
either streams the binary asset or redirects to the third-party embed.

# Architecture

Three collaborating pieces:

  - Gate: mints and validates encrypted, time-bounded grant tokens.
  - Service: the negotiation operations the player shell calls.
  - Handler: the HTTP surface (/video-proxy, /video-security).

Grants are stateless — all validation state travels inside the ciphertext,
so no storage backs this package and any instance can validate any grant.
*/
package videogate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Grant is the payload sealed inside a video access token.
//
// # Lifecycle
//
// Grants are created per playback request and never persisted; they exist
// only in transit (as a URL query parameter) and are reconstructed by
// decrypting on each proxy request. Once minted, a grant stays valid until
// natural expiry — there is no revocation list.
type Grant struct {
	// LessonID scopes the grant to a single lesson.
	LessonID string `json:"lesson_id"`

	// UserID binds the grant to a viewer, or holds the anonymous sentinel.
	// Bound grants validate only for their viewer; anonymous grants validate
	// for anyone holding the token.
	UserID string `json:"user_id"`

	// IssuedAt is the mint time in milliseconds since epoch.
	IssuedAt int64 `json:"issued_at"`

	// ExpiresAt is IssuedAt plus the fixed grant TTL, in milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

// marshalGrant serializes a grant for sealing.
func marshalGrant(grant Grant) ([]byte, error) {
	payload, err := json.Marshal(grant)
	if err != nil {
		return nil, fmt.Errorf("videogate: failed to serialize grant: %w", err)
	}
	return payload, nil
}

// unmarshalGrant parses a decrypted grant payload strictly.
//
// Unknown fields and missing fields are both rejected — a grant is a small
// fixed-shape record, and anything else is treated as tampering.
func unmarshalGrant(payload []byte) (*Grant, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()

	grant := &Grant{}
	if err := decoder.Decode(grant); err != nil {
		return nil, fmt.Errorf("videogate: malformed grant payload: %w", err)
	}

	// Reject trailing data after the JSON document.
	if decoder.More() {
		return nil, fmt.Errorf("videogate: trailing data in grant payload")
	}

	if grant.LessonID == "" || grant.UserID == "" || grant.IssuedAt == 0 || grant.ExpiresAt == 0 {
		return nil, fmt.Errorf("videogate: incomplete grant payload")
	}

	return grant, nil
}

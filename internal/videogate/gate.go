// Copyright (c) 2026 Reelgate. All rights reserved.

package videogate

import (
	"fmt"
	"net/url"
	"time"

	"github.com/reelgate/reelgate/internal/platform/constants"
)

// Gate mints and validates video grant tokens.
//
// # Concurrency
//
// Gate holds no mutable state; all methods are safe for concurrent use.
type Gate struct {
	codec *Codec

	// now is injectable so expiry behavior can be tested at exact boundaries.
	now func() time.Time
}

// NewGate constructs a Gate around the shared [Codec].
func NewGate(codec *Codec) *Gate {
	return &Gate{
		codec: codec,
		now:   time.Now,
	}
}

// Issue mints a grant token scoped to lessonID.
//
// userID may be empty for anonymous playback; the grant then records the
// anonymous sentinel and validates for any requester. A non-empty userID
// produces a viewer-bound grant.
//
// Issue fails closed: serialization or encryption errors surface as errors,
// never as a degraded token.
func (gate *Gate) Issue(lessonID, userID string) (string, error) {
	if lessonID == "" {
		return "", fmt.Errorf("videogate: lesson ID must not be empty")
	}

	if userID == "" {
		userID = constants.AnonymousUserID
	}

	issuedAt := gate.now()
	grant := Grant{
		LessonID:  lessonID,
		UserID:    userID,
		IssuedAt:  issuedAt.UnixMilli(),
		ExpiresAt: issuedAt.Add(constants.VideoGrantTTL).UnixMilli(),
	}

	payload, err := marshalGrant(grant)
	if err != nil {
		return "", err
	}

	return gate.codec.Seal(payload)
}

// Validate reports whether token is a live grant for lessonID presented by
// requesterID (empty for anonymous requests).
//
// A token is valid iff it opens under the shared key, parses strictly, its
// lesson matches, its user binding matches (anonymous grants match anyone),
// and the clock sits inside [IssuedAt, ExpiresAt).
//
// Validate is pure: no side effects, no external calls, deterministic given
// the injected clock. Every failure path returns false — it never panics and
// never surfaces why a token was rejected, so callers cannot leak oracle
// detail to clients.
func (gate *Gate) Validate(token, lessonID, requesterID string) bool {
	payload, err := gate.codec.Open(token)
	if err != nil {
		return false
	}

	grant, err := unmarshalGrant(payload)
	if err != nil {
		return false
	}

	if grant.LessonID != lessonID {
		return false
	}

	if grant.UserID != constants.AnonymousUserID && grant.UserID != requesterID {
		return false
	}

	now := gate.now().UnixMilli()
	return grant.IssuedAt <= now && now < grant.ExpiresAt
}

// ProxyURL builds the same-origin path a client uses to reach the proxy
// fetcher. This indirection is the core anti-leakage decision: the client
// only ever sees this path, never the CMS asset URL.
func (gate *Gate) ProxyURL(token, lessonID string) string {
	query := url.Values{}
	query.Set("token", token)
	query.Set("lesson", lessonID)
	return constants.VideoProxyPath + "?" + query.Encode()
}

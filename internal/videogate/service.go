// Copyright (c) 2026 Reelgate. All rights reserved.

package videogate

import (
	"context"
	"net/http"

	"github.com/reelgate/reelgate/internal/catalog"
	"github.com/reelgate/reelgate/internal/platform/apperr"
	"github.com/reelgate/reelgate/internal/platform/constants"
)

// LessonSource is the lesson lookup collaborator the gate consumes.
// The cached CMS adapter implements it; tests substitute fakes.
type LessonSource interface {
	LessonBySlugOrID(ctx context.Context, id string) (*catalog.Lesson, error)
}

// Service implements the access negotiation operations behind the
// /video-security endpoint.
//
// The wire protocol's action names ("encrypt"/"decrypt") are historical —
// the operations are named here by what they actually do: hand out direct
// access material, or mint a proxy grant.
type Service struct {
	gate    *Gate
	codec   *Codec
	lessons LessonSource
}

// NewService wires the negotiation service.
func NewService(gate *Gate, codec *Codec, lessons LessonSource) *Service {
	return &Service{
		gate:    gate,
		codec:   codec,
		lessons: lessons,
	}
}

// DirectAccess is the response to an "encrypt" negotiation: the resolved
// asset URL sealed under the shared key, plus a grant for diagnostics and
// alternate player flows.
type DirectAccess struct {
	EncryptedURL string `json:"encryptedUrl"`
	Token        string `json:"token"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// ProxyAccess is the response to a "decrypt" negotiation: a freshly minted
// grant and the same-origin proxy URL the player should load.
type ProxyAccess struct {
	VideoURL  string `json:"videoUrl"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// GetDirectAccess resolves the lesson's real video URL and returns it
// sealed, never in plaintext.
//
// userID may be empty; an authenticated caller gets a viewer-bound grant.
func (service *Service) GetDirectAccess(ctx context.Context, lessonID, userID string) (*DirectAccess, error) {
	lesson, err := service.lessons.LessonBySlugOrID(ctx, lessonID)
	if err != nil {
		return nil, lessonLookupError(err)
	}

	videoURL, _, ok := lesson.ResolveVideoURL()
	if !ok {
		return nil, apperr.NotFound("Lesson video")
	}

	encryptedURL, err := service.codec.EncryptURL(videoURL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	token, err := service.gate.Issue(lessonID, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &DirectAccess{
		EncryptedURL: encryptedURL,
		Token:        token,
		ExpiresIn:    constants.VideoGrantTTL.Milliseconds(),
	}, nil
}

// GetProxyAccess mints a fresh grant and returns the proxy URL for it.
//
// No lesson lookup happens here — existence is checked by the proxy on
// playback, and a grant for a nonexistent lesson is harmless.
func (service *Service) GetProxyAccess(_ context.Context, lessonID, userID string) (*ProxyAccess, error) {
	token, err := service.gate.Issue(lessonID, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &ProxyAccess{
		VideoURL:  service.gate.ProxyURL(token, lessonID),
		Token:     token,
		ExpiresIn: constants.VideoGrantTTL.Milliseconds(),
	}, nil
}

// lessonLookupError folds collaborator failures into the 404 the delivery
// contract promises, keeping the original cause for server-side logs.
func lessonLookupError(err error) error {
	if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusNotFound {
		return err
	}
	return &apperr.AppError{
		Code:       "NOT_FOUND",
		Message:    "Lesson not found",
		HTTPStatus: http.StatusNotFound,
		Cause:      err,
	}
}

// Copyright (c) 2026 Reelgate. All rights reserved.

package videogate

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/reelgate/reelgate/internal/platform/apperr"
	"github.com/reelgate/reelgate/internal/platform/ctxutil"
	requestutil "github.com/reelgate/reelgate/internal/platform/request"
	"github.com/reelgate/reelgate/internal/platform/respond"
	"github.com/reelgate/reelgate/internal/platform/validate"
)

// Negotiation wire actions. "encrypt" and "decrypt" are kept verbatim for
// compatibility with the deployed player shell, even though "decrypt" has
// always minted a fresh grant rather than decrypting anything.
const (
	actionDirectAccess = "encrypt"
	actionProxyAccess  = "decrypt"
)

// Handler implements the video delivery HTTP surface.
//
// # Endpoints
//   - GET  /video-proxy    : Validates a grant, then streams or redirects.
//   - POST /video-security : Access negotiation for the player shell.
type Handler struct {
	service *Service
	gate    *Gate
	lessons LessonSource

	// stream fetches upstream video bytes. No overall timeout — a feature
	// film takes as long as it takes — but connecting and headers are bounded.
	stream *http.Client
}

// NewHandler constructs the video gate handler.
func NewHandler(service *Service, gate *Gate, lessons LessonSource) *Handler {
	return &Handler{
		service: service,
		gate:    gate,
		lessons: lessons,
		stream: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 15 * time.Second,
			},
		},
	}
}

/*
Proxy handles a gated video fetch.

GET /video-proxy?token=...&lesson=...

Description: Validates the grant token on every request, resolves the
lesson's real video location server-side, and either streams the binary
content (uploaded assets) or redirects (third-party embeds). Responses are
marked uncacheable so each playback re-validates the grant.

Response:
  - 200: Binary video stream (Content-Type echoed from upstream)
  - 206: Partial content when the player sent a Range header
  - 302: Redirect to a third-party embed URL
  - 400: Missing token or lesson parameter
  - 401: Invalid, expired, or mismatched grant
  - 404: Lesson unknown, no video attached, or upstream refused
*/
func (handler *Handler) Proxy(writer http.ResponseWriter, request *http.Request) {
	token := request.URL.Query().Get("token")
	lessonID := request.URL.Query().Get("lesson")

	if token == "" || lessonID == "" {
		respond.Error(writer, request, apperr.ValidationError("Missing token or lesson ID"))
		return
	}

	// Anonymous grants validate for anyone; viewer-bound grants require the
	// session that minted them.
	requesterID := requestutil.UserID(request)
	if !handler.gate.Validate(token, lessonID, requesterID) {
		respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
		return
	}

	lesson, err := handler.lessons.LessonBySlugOrID(request.Context(), lessonID)
	if err != nil {
		respond.Error(writer, request, lessonLookupError(err))
		return
	}

	videoURL, _, ok := lesson.ResolveVideoURL()
	if !ok {
		respond.Error(writer, request, apperr.NotFound("Lesson video"))
		return
	}

	if lesson.HasBinaryVideo() {
		handler.streamVideo(writer, request, videoURL, lesson.VideoAsset.ContentType)
		return
	}

	// Embed case: the hosting platform gates its own content.
	http.Redirect(writer, request, videoURL, http.StatusFound)
}

// streamVideo pipes the upstream asset body straight through to the client.
//
// The body is never buffered whole: io.Copy moves bytes as they arrive, so
// memory stays flat regardless of asset size. Range requests pass through
// so players can seek.
func (handler *Handler) streamVideo(writer http.ResponseWriter, request *http.Request, videoURL, contentType string) {
	upstreamRequest, err := http.NewRequestWithContext(request.Context(), http.MethodGet, videoURL, nil)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	if rangeHeader := request.Header.Get("Range"); rangeHeader != "" {
		upstreamRequest.Header.Set("Range", rangeHeader)
	}

	upstream, err := handler.stream.Do(upstreamRequest)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	defer func() { _ = upstream.Body.Close() }()

	if upstream.StatusCode != http.StatusOK && upstream.StatusCode != http.StatusPartialContent {
		respond.Error(writer, request, apperr.NotFound("Video"))
		return
	}

	header := writer.Header()
	if upstreamType := upstream.Header.Get("Content-Type"); upstreamType != "" {
		contentType = upstreamType
	}
	header.Set("Content-Type", contentType)

	for _, passthrough := range []string{"Content-Length", "Content-Range", "Accept-Ranges"} {
		if value := upstream.Header.Get(passthrough); value != "" {
			header.Set(passthrough, value)
		}
	}

	// Defeat caching: every playback must re-validate its grant.
	header.Set("Cache-Control", "private, no-cache, no-store, must-revalidate")
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")

	writer.WriteHeader(upstream.StatusCode)

	if _, err := io.Copy(writer, upstream.Body); err != nil {
		// Headers are gone; all we can do is record the broken stream.
		ctxutil.GetLogger(request.Context()).Warn("video_stream_interrupted",
			slog.String("lesson", request.URL.Query().Get("lesson")),
			slog.Any("error", err),
		)
	}
}

// negotiationRequest is the /video-security request body.
type negotiationRequest struct {
	Action   string `json:"action"`
	LessonID string `json:"lessonId"`
}

/*
Negotiate handles access negotiation for the player shell.

POST /video-security

Description: Dispatches on the wire action. "encrypt" resolves and seals the
real video URL (direct access); "decrypt" mints a fresh grant and returns the
proxy URL (proxy access). Authenticated callers receive viewer-bound grants.

Request:
  - Body: negotiationRequest (Action, LessonID)

Response:
  - 200: DirectAccess or ProxyAccess payload
  - 400: Unknown action or missing lesson ID
  - 404: Lesson unknown (direct access only)
*/
func (handler *Handler) Negotiate(writer http.ResponseWriter, request *http.Request) {
	var input negotiationRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("lessonId", input.LessonID).
		Required("action", input.Action).
		OneOf("action", input.Action, actionDirectAccess, actionProxyAccess)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.UserID(request)

	switch input.Action {
	case actionDirectAccess:
		access, err := handler.service.GetDirectAccess(request.Context(), input.LessonID, userID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, access)

	case actionProxyAccess:
		access, err := handler.service.GetProxyAccess(request.Context(), input.LessonID, userID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, access)
	}
}

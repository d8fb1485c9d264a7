// Copyright (c) 2026 Reelgate. All rights reserved.

package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/reelgate/reelgate/internal/platform/apperr"
	"github.com/reelgate/reelgate/internal/platform/ctxutil"
	requestutil "github.com/reelgate/reelgate/internal/platform/request"
	"github.com/reelgate/reelgate/internal/platform/respond"
	"github.com/reelgate/reelgate/internal/platform/validate"
	"github.com/reelgate/reelgate/pkg/slug"
)

// WebhookHandler receives publish/unpublish callbacks from the CMS and
// evicts the affected cache entries.
//
// This is the service's analog of on-demand revalidation: content editors
// publish in the CMS, the CMS calls back here, and the next catalog read
// refetches fresh data.
type WebhookHandler struct {
	cache  Invalidator
	secret string
}

// Invalidator is the eviction surface of [Cache] the webhook needs.
type Invalidator interface {
	InvalidateLesson(ctx context.Context, slugOrID string) error
	InvalidateCourses(ctx context.Context) error
	InvalidateAll(ctx context.Context) error
}

// NewWebhookHandler constructs the webhook receiver.
func NewWebhookHandler(cache Invalidator, secret string) *WebhookHandler {
	return &WebhookHandler{cache: cache, secret: secret}
}

// webhookPayload is the subset of the CMS publish event we act on.
// Field values arrive keyed by locale.
type webhookPayload struct {
	Sys struct {
		ID          string `json:"id"`
		ContentType struct {
			Sys struct {
				ID string `json:"id"`
			} `json:"sys"`
		} `json:"contentType"`
	} `json:"sys"`
	Fields struct {
		Slug  map[string]string `json:"slug"`
		Title map[string]string `json:"title"`
	} `json:"fields"`
}

/*
HandleContentEvent processes a CMS publish webhook.

POST /webhooks/content?secret=...

Description: Authorizes the callback via a shared secret, identifies the
published entry, and evicts the matching catalog cache entries. Unknown
content types flush the whole catalog prefix.

Response:
  - 200: Receipt with the entry ID and content type
  - 400: Malformed payload (no sys block)
  - 401: Secret mismatch
*/
func (handler *WebhookHandler) HandleContentEvent(writer http.ResponseWriter, request *http.Request) {
	// Shared-secret check keeps random POSTs from flushing the cache.
	if request.URL.Query().Get("secret") != handler.secret {
		respond.Error(writer, request, apperr.Unauthorized("Invalid webhook secret"))
		return
	}

	payload := webhookPayload{}
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if payload.Sys.ID == "" {
		respond.Error(writer, request, apperr.ValidationError("Invalid webhook payload"))
		return
	}

	ctx := request.Context()
	log := ctxutil.GetLogger(ctx)
	contentType := payload.Sys.ContentType.Sys.ID
	entrySlug := payload.entrySlug()

	var err error
	switch contentType {
	case contentTypeCourse:
		// A course edit changes both its detail view and the listing.
		err = handler.cache.InvalidateCourses(ctx)
	case contentTypeLesson:
		if entrySlug != "" {
			err = handler.cache.InvalidateLesson(ctx, entrySlug)
		} else {
			err = handler.cache.InvalidateAll(ctx)
		}
	default:
		err = handler.cache.InvalidateAll(ctx)
	}

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	log.Info("content_cache_evicted",
		slog.String("content_type", contentType),
		slog.String("entry_id", payload.Sys.ID),
		slog.String("slug", entrySlug),
	)

	respond.OK(writer, map[string]any{
		"received":     true,
		"content_type": contentType,
		"entry_id":     payload.Sys.ID,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// entrySlug extracts the entry's slug from the localized fields, deriving
// one from the title when the editor left the slug blank (mirroring how the
// site generates slugs at publish time).
func (payload *webhookPayload) entrySlug() string {
	for _, value := range payload.Fields.Slug {
		if value != "" {
			return value
		}
	}

	for _, value := range payload.Fields.Title {
		if value != "" {
			return slug.From(value)
		}
	}

	return ""
}

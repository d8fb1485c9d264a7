// Copyright (c) 2026 Reelgate. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/reelgate/reelgate/internal/platform/apperr"
)

// Content type identifiers in the CMS space.
const (
	contentTypeLesson = "lesson"
	contentTypeCourse = "course"
)

// Client talks to a Contentful-compatible delivery API.
//
// # Scope
//
// Read-only: the delivery API serves published entries. Draft content and
// schema management happen in the CMS, outside this service.
type Client struct {
	baseURL     string
	spaceID     string
	environment string
	accessToken string
	httpClient  *http.Client
}

// NewClient constructs a delivery API client.
func NewClient(baseURL, spaceID, environment, accessToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		spaceID:     spaceID,
		environment: environment,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// # Delivery API Wire Types

// entryEnvelope mirrors the delivery API's collection response: matched
// entries plus the linked assets resolved by include=2.
type entryEnvelope struct {
	Items    []entry `json:"items"`
	Includes struct {
		Asset []assetEntry `json:"Asset"`
	} `json:"includes"`
}

type entry struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Fields entryFields `json:"fields"`
}

type entryFields struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Price         int64      `json:"price"`
	Order         int        `json:"order"`
	IsPreview     bool       `json:"isPreview"`
	RequiresLogin bool       `json:"requiresLogin"`
	VideoURL      string     `json:"videoUrl"`
	VideoAsset    *assetLink `json:"videoAsset"`
}

type assetLink struct {
	Sys struct {
		ID       string `json:"id"`
		LinkType string `json:"linkType"`
	} `json:"sys"`
}

type assetEntry struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Fields struct {
		File struct {
			URL         string `json:"url"`
			ContentType string `json:"contentType"`
			Details     struct {
				Size int64 `json:"size"`
			} `json:"details"`
		} `json:"file"`
	} `json:"fields"`
}

// # Lookups

// LessonBySlugOrID resolves a lesson by its slug, falling back to the CMS
// entry ID. Both identifier styles appear in the wild: the player shell
// passes slugs, legacy deep links pass entry IDs.
func (client *Client) LessonBySlugOrID(ctx context.Context, id string) (*Lesson, error) {
	envelope, err := client.queryEntries(ctx, url.Values{
		"content_type": {contentTypeLesson},
		"fields.slug":  {id},
		"limit":        {"1"},
		"include":      {"2"},
	})
	if err != nil {
		return nil, err
	}

	if len(envelope.Items) == 0 {
		// Fall back to entry-ID lookup.
		envelope, err = client.queryEntries(ctx, url.Values{
			"content_type": {contentTypeLesson},
			"sys.id":       {id},
			"limit":        {"1"},
			"include":      {"2"},
		})
		if err != nil {
			return nil, err
		}
	}

	if len(envelope.Items) == 0 {
		return nil, apperr.NotFound("Lesson")
	}

	return lessonFromEntry(envelope.Items[0], envelope.Includes.Asset), nil
}

// Courses returns every published course in the space.
func (client *Client) Courses(ctx context.Context) ([]Course, error) {
	envelope, err := client.queryEntries(ctx, url.Values{
		"content_type": {contentTypeCourse},
		"order":        {"fields.title"},
		"limit":        {"100"},
	})
	if err != nil {
		return nil, err
	}

	courses := make([]Course, 0, len(envelope.Items))
	for _, item := range envelope.Items {
		courses = append(courses, Course{
			ID:          item.Sys.ID,
			Title:       item.Fields.Title,
			Slug:        item.Fields.Slug,
			Description: item.Fields.Description,
			Price:       item.Fields.Price,
		})
	}

	return courses, nil
}

// queryEntries performs a GET against the entries collection endpoint.
func (client *Client) queryEntries(ctx context.Context, query url.Values) (*entryEnvelope, error) {
	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/entries?%s",
		client.baseURL, client.spaceID, client.environment, query.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to build CMS request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+client.accessToken)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, apperr.Upstream("Content service", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("Content service",
			fmt.Errorf("catalog: CMS returned status %d", response.StatusCode))
	}

	envelope := &entryEnvelope{}
	if err := json.NewDecoder(response.Body).Decode(envelope); err != nil {
		return nil, apperr.Upstream("Content service",
			fmt.Errorf("catalog: malformed CMS response: %w", err))
	}

	return envelope, nil
}

// lessonFromEntry flattens a delivery API entry plus its resolved asset
// links into the domain model.
func lessonFromEntry(item entry, assets []assetEntry) *Lesson {
	lesson := &Lesson{
		ID:            item.Sys.ID,
		Title:         item.Fields.Title,
		Slug:          item.Fields.Slug,
		Order:         item.Fields.Order,
		IsPreview:     item.Fields.IsPreview,
		RequiresLogin: item.Fields.RequiresLogin,
		VideoURL:      item.Fields.VideoURL,
	}

	if link := item.Fields.VideoAsset; link != nil {
		for _, asset := range assets {
			if asset.Sys.ID != link.Sys.ID {
				continue
			}
			lesson.VideoAsset = &VideoAsset{
				URL:         asset.Fields.File.URL,
				ContentType: asset.Fields.File.ContentType,
				Size:        asset.Fields.File.Details.Size,
			}
			break
		}
	}

	return lesson
}

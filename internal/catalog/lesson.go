// Copyright (c) 2026 Reelgate. All rights reserved.

/*
Package catalog adapts the headless CMS into the lesson and course model the
rest of the service consumes.

The CMS owns all content — Reelgate only reads. Lookups go through a
read-through Redis cache so the proxy fetcher's per-playback lesson lookup
does not hammer the CMS delivery API; publish-event webhooks evict stale
entries.

# Delivery Modes

A lesson carries exactly one video reference: either an uploaded binary
asset (streamed through the video proxy) or a third-party embed URL
(redirected to, since those platforms gate their own content).
*/
package catalog

import "strings"

// VideoAsset describes a binary video file hosted by the CMS.
type VideoAsset struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size,omitempty"`
}

// Lesson is a single playable unit inside a course.
//
// VideoURL and VideoAsset are mutually exclusive; [Lesson.ResolveVideoURL]
// picks whichever is present. Handlers must never serialize these fields to
// clients — the whole point of the video gate is that the real location
// stays server-side.
type Lesson struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Order         int         `json:"order"`
	IsPreview     bool        `json:"is_preview"`
	RequiresLogin bool        `json:"requires_login"`
	VideoURL      string      `json:"video_url,omitempty"`
	VideoAsset    *VideoAsset `json:"video_asset,omitempty"`
}

// Course is a purchasable collection of lessons.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
}

// ResolveVideoURL returns the deliverable video location for the lesson.
//
// The binary asset wins over the embed URL when both are somehow set.
// CMS asset URLs are protocol-relative ("//assets..."), so they are
// normalized to https before use. ok is false when the lesson has no video.
func (lesson *Lesson) ResolveVideoURL() (videoURL, contentType string, ok bool) {
	if lesson.VideoAsset != nil && lesson.VideoAsset.URL != "" {
		videoURL = lesson.VideoAsset.URL
		contentType = lesson.VideoAsset.ContentType
	} else {
		videoURL = lesson.VideoURL
	}

	if videoURL == "" {
		return "", "", false
	}

	if strings.HasPrefix(videoURL, "//") {
		videoURL = "https:" + videoURL
	}

	return videoURL, contentType, true
}

// HasBinaryVideo reports whether the lesson's content should be streamed
// through the proxy rather than redirected to.
func (lesson *Lesson) HasBinaryVideo() bool {
	return lesson.VideoAsset != nil && strings.HasPrefix(lesson.VideoAsset.ContentType, "video/")
}

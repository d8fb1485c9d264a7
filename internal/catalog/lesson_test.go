// Copyright (c) 2026 Reelgate. All rights reserved.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestLesson_ResolveVideoURL covers precedence between the binary asset and
the embed URL, plus protocol-relative normalization.
*/
func TestLesson_ResolveVideoURL(t *testing.T) {
	tests := []struct {
		name            string
		lesson          Lesson
		wantURL         string
		wantContentType string
		wantOK          bool
	}{
		{
			name: "binary_asset",
			lesson: Lesson{VideoAsset: &VideoAsset{
				URL:         "//videos.ctfassets.net/space/a.mp4",
				ContentType: "video/mp4",
			}},
			wantURL:         "https://videos.ctfassets.net/space/a.mp4",
			wantContentType: "video/mp4",
			wantOK:          true,
		},
		{
			name:    "embed_url",
			lesson:  Lesson{VideoURL: "https://player.example.com/embed/x"},
			wantURL: "https://player.example.com/embed/x",
			wantOK:  true,
		},
		{
			name: "asset_wins_over_embed",
			lesson: Lesson{
				VideoURL:   "https://player.example.com/embed/x",
				VideoAsset: &VideoAsset{URL: "https://cdn.example.com/a.mp4", ContentType: "video/mp4"},
			},
			wantURL:         "https://cdn.example.com/a.mp4",
			wantContentType: "video/mp4",
			wantOK:          true,
		},
		{
			name:    "protocol_relative_embed",
			lesson:  Lesson{VideoURL: "//player.example.com/embed/x"},
			wantURL: "https://player.example.com/embed/x",
			wantOK:  true,
		},
		{
			name:   "no_video",
			lesson: Lesson{Title: "Reading: Color Theory"},
			wantOK: false,
		},
		{
			name:   "empty_asset_and_no_embed",
			lesson: Lesson{VideoAsset: &VideoAsset{}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, gotContentType, gotOK := tt.lesson.ResolveVideoURL()
			assert.Equal(t, tt.wantOK, gotOK)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantContentType, gotContentType)
		})
	}
}

/*
TestLesson_HasBinaryVideo distinguishes streamable assets from embeds.
*/
func TestLesson_HasBinaryVideo(t *testing.T) {
	assert.True(t, (&Lesson{VideoAsset: &VideoAsset{ContentType: "video/mp4"}}).HasBinaryVideo())
	assert.True(t, (&Lesson{VideoAsset: &VideoAsset{ContentType: "video/webm"}}).HasBinaryVideo())
	assert.False(t, (&Lesson{VideoAsset: &VideoAsset{ContentType: "application/pdf"}}).HasBinaryVideo())
	assert.False(t, (&Lesson{VideoURL: "https://player.example.com/embed/x"}).HasBinaryVideo())
	assert.False(t, (&Lesson{}).HasBinaryVideo())
}

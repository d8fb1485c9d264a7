// Copyright (c) 2026 Reelgate. All rights reserved.

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/reelgate/reelgate/internal/platform/request"
	"github.com/reelgate/reelgate/internal/platform/respond"
	"github.com/reelgate/reelgate/internal/platform/validate"
)

// Handler implements the public catalog read endpoints.
//
// # Scope
//
// This handler serves metadata only. Video locations are deliberately
// stripped from every response — playback access goes through the video
// gate's negotiation endpoint instead.
type Handler struct {
	source Source
}

// NewHandler constructs a catalog [Handler] over a lesson/course source
// (normally the cached CMS adapter).
func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

// Routes returns a [chi.Router] with the catalog read endpoints.
//
// # Endpoints
//   - GET /courses        : Published course listing.
//   - GET /lessons/{slug} : Single lesson metadata.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/courses", handler.listCourses)
	router.Get("/lessons/{slug}", handler.getLesson)

	return router
}

// lessonResponse is the client-facing lesson shape. Video references never
// leave the server; clients learn only whether a video exists.
type lessonResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Order         int    `json:"order"`
	IsPreview     bool   `json:"is_preview"`
	RequiresLogin bool   `json:"requires_login"`
	HasVideo      bool   `json:"has_video"`
}

/*
listCourses returns every published course.

GET /api/v1/courses

Response:
  - 200: []Course
  - 502: Upstream CMS failure
*/
func (handler *Handler) listCourses(writer http.ResponseWriter, request *http.Request) {
	courses, err := handler.source.Courses(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, courses)
}

/*
getLesson returns a single lesson's metadata by slug.

GET /api/v1/lessons/{slug}

Response:
  - 200: lessonResponse
  - 400: Invalid slug format
  - 404: Lesson not published
*/
func (handler *Handler) getLesson(writer http.ResponseWriter, request *http.Request) {
	lessonSlug := requestutil.Param(request, "slug")

	validator := &validate.Validator{}
	validator.Required("slug", lessonSlug).Slug("slug", lessonSlug)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	lesson, err := handler.source.LessonBySlugOrID(request.Context(), lessonSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, _, hasVideo := lesson.ResolveVideoURL()

	respond.OK(writer, lessonResponse{
		ID:            lesson.ID,
		Title:         lesson.Title,
		Slug:          lesson.Slug,
		Order:         lesson.Order,
		IsPreview:     lesson.IsPreview,
		RequiresLogin: lesson.RequiresLogin,
		HasVideo:      hasVideo,
	})
}

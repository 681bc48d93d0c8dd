// Copyright (c) 2026 SkyComic. All rights reserved.

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/skycomic/skycomic/internal/platform/request"
	"github.com/skycomic/skycomic/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapter management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches chapter endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Post("/chapters", handler.CreateChapter)
	api.Get("/chapters/{id}", handler.GetChapter)
	api.Delete("/chapters/{id}", handler.DeleteChapter)
}

// createChapterRequest is the JSON payload for chapter creation.
type createChapterRequest struct {
	ComicID       string  `json:"comic_id"`
	ChapterNumber float64 `json:"chapter_number"`
	Title         string  `json:"title"`
	Date          string  `json:"date"`
}

/*
POST /api/chapters.

Description: Creates a chapter attached to an existing comic. The comic must
be referenced by its canonical id.

Request:
  - comic_id: string (canonical 24-hex id, required)
  - chapter_number: number (fractional allowed)
  - title: string
  - date: string (free-form display value, optional)

Response:
  - 201: Chapter: The created chapter document
  - 400: ErrValidation: Missing or malformed fields
  - 404: ErrNotFound: Comic not found
*/
func (handler *Handler) CreateChapter(writer http.ResponseWriter, request *http.Request) {
	var payload createChapterRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.Create(request.Context(), CreateInput{
		ComicID:       payload.ComicID,
		ChapterNumber: payload.ChapterNumber,
		Title:         payload.Title,
		Date:          payload.Date,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapter)
}

/*
GET /api/chapters/{id}.

Description: Returns a single chapter with its pages in reading order.
Stored page references are resolved to fetchable URLs.

Response:
  - 200: WithPages: Chapter document with embedded pages
  - 404: ErrNotFound: Chapter not found
*/
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	chapter, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

/*
DELETE /api/chapters/{id}.

Description: Removes a chapter. Its page rows and stored images are kept.

Response:
  - 200: {"message": "Chapter deleted"}
  - 404: ErrNotFound: Chapter not found
*/
func (handler *Handler) DeleteChapter(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Chapter deleted")
}

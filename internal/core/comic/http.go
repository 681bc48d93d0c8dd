// Copyright (c) 2026 SkyComic. All rights reserved.

package comic

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/skycomic/skycomic/internal/platform/request"
	"github.com/skycomic/skycomic/internal/platform/respond"
	"github.com/skycomic/skycomic/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalogue management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comic [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches catalogue endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/comics", handler.ListComics)
	api.Post("/comics", handler.CreateComic)
	api.Get("/comics/{id}", handler.GetComic)
	api.Put("/comics/{id}", handler.UpdateComic)
	api.Delete("/comics/{id}", handler.DeleteComic)

	api.Get("/stats", handler.GetStats)
}

// createComicRequest is the JSON payload for comic creation.
type createComicRequest struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Artist      string   `json:"artist"`
	Status      Status   `json:"status"`
	CoverURL    string   `json:"cover_url"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating"`
	Views       Views    `json:"views"`
	Genres      []string `json:"genres"`
	Slug        string   `json:"slug"`
}

/*
GET /api/comics.

Description: Returns the catalogue, optionally filtered by a title substring
and re-ordered. Without page/limit parameters the full result set is
returned.

Request:
  - q: string (case-insensitive title substring)
  - sort: string (latest, popular, rating, az)
  - page: int (optional)
  - limit: int (optional)

Response:
  - 200: []Comic: Matching comics
*/
func (handler *Handler) ListComics(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{
		Query: request.URL.Query().Get("q"),
		Sort:  request.URL.Query().Get("sort"),
	}
	window := pagination.FromRequest(request)

	comics, err := handler.service.List(request.Context(), filter, window)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comics)
}

/*
GET /api/comics/{id}.

Description: Returns one comic with its chapters and pages fully assembled.
The identifier may be either the canonical 24-hex id or the legacy numeric
id.

Response:
  - 200: Detail: Comic document with embedded chapters
  - 404: ErrNotFound: Comic not found
*/
func (handler *Handler) GetComic(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	detail, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

/*
POST /api/comics.

Description: Creates a comic. The canonical id is generated server-side and
the legacy numeric id is assigned as max existing plus one.

Response:
  - 201: Comic: The created comic document
  - 400: ErrValidation: Missing or malformed fields
*/
func (handler *Handler) CreateComic(writer http.ResponseWriter, request *http.Request) {
	var payload createComicRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.Create(request.Context(), CreateInput{
		Title:       payload.Title,
		Author:      payload.Author,
		Artist:      payload.Artist,
		Status:      payload.Status,
		CoverURL:    payload.CoverURL,
		Description: payload.Description,
		Rating:      payload.Rating,
		Views:       payload.Views,
		Genres:      payload.Genres,
		Slug:        payload.Slug,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comic)
}

/*
PUT /api/comics/{id}.

Description: Applies a partial-field update. Fields absent from the payload
keep their stored values. The identifier may be either form.

Response:
  - 200: Comic: The updated comic document
  - 400: ErrValidation: Malformed fields
  - 404: ErrNotFound: Comic not found
*/
func (handler *Handler) UpdateComic(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.Update(request.Context(), id, &patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

/*
DELETE /api/comics/{id}.

Description: Removes a comic together with its chapters. The identifier may
be either form.

Response:
  - 200: {"message": "Comic deleted successfully"}
  - 404: ErrNotFound: Comic not found
*/
func (handler *Handler) DeleteComic(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Comic deleted successfully")
}

/*
GET /api/stats.

Description: Returns the dashboard aggregates: total number of comics and
the compact-format sum of all view counts.

Response:
  - 200: Stats: {"totalComics": 42, "totalViews": "12.5M"}
*/
func (handler *Handler) GetStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

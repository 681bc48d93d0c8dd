// Copyright (c) 2026 SkyComic. All rights reserved.

package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skycomic/skycomic/internal/platform/constants"
	requestutil "github.com/skycomic/skycomic/internal/platform/request"
	"github.com/skycomic/skycomic/internal/platform/respond"
	"github.com/skycomic/skycomic/internal/platform/validate"
)

// multipartMemoryLimit is the in-memory buffer handed to ParseMultipartForm;
// larger files spill to temporary disk storage.
const multipartMemoryLimit = 32 << 20

// # Handler Implementation

// Handler implements the HTTP layer for image ingestion.
type Handler struct {
	service *Service
}

// NewHandler constructs a new media [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches upload and media endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Post("/upload/cover/{comicId}", handler.UploadCover)
	api.Post("/upload/chapter/{chapterId}", handler.UploadChapterPages)

	api.Get("/media/signed-url", handler.SignedURL)
	api.Get("/r2/status", handler.StorageStatus)

	api.Get("/comics/{comicId}/uploads", handler.ListUploads)
}

// signedURLResponse is the payload of a successful key resolution.
type signedURLResponse struct {
	URL string `json:"url"`
}

// storageStatusResponse reports whether the R2 adapter is usable.
type storageStatusResponse struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

/*
POST /api/upload/cover/{comicId}.

Description: Accepts a single multipart image under the "cover" field and
replaces the comic's cover. The identifier may be either form.

Request:
  - cover: file (jpeg, png, gif or webp, max 10MB)

Response:
  - 201: CoverResult: {"comic": {...}, "cover_url": "..."}
  - 400: ErrValidation: Missing file, wrong type, or oversized
  - 404: ErrNotFound: Comic not found
  - 503: ErrServiceUnavailable: Object storage is not configured
*/
func (handler *Handler) UploadCover(writer http.ResponseWriter, request *http.Request) {
	comicID := requestutil.ID(request, "comicId")

	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes+multipartOverhead)
	if err := request.ParseMultipartForm(multipartMemoryLimit); err != nil {
		respond.Error(writer, request, validate.RequiredError(constants.CoverFormField, "Invalid multipart payload"))
		return
	}

	file, header, err := request.FormFile(constants.CoverFormField)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(constants.CoverFormField, "Missing cover file"))
		return
	}
	defer file.Close()

	result, err := handler.service.UploadCover(request.Context(), comicID, File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
POST /api/upload/chapter/{chapterId}.

Description: Accepts up to 50 multipart images under the "pages" field and
appends them to the chapter in upload order.

Request:
  - pages: file[] (jpeg, png, gif or webp, max 10MB each, max 50 files)

Response:
  - 201: PagesResult: {"chapter": {...}, "pages": [...]}
  - 400: ErrValidation: Missing files, wrong type, oversized, or too many
  - 404: ErrNotFound: Chapter not found
  - 503: ErrServiceUnavailable: Object storage is not configured
*/
func (handler *Handler) UploadChapterPages(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "chapterId")

	maxBody := int64(constants.MaxUploadBytes)*constants.MaxChapterPages + multipartOverhead
	request.Body = http.MaxBytesReader(writer, request.Body, maxBody)
	if err := request.ParseMultipartForm(multipartMemoryLimit); err != nil {
		respond.Error(writer, request, validate.RequiredError(constants.PagesFormField, "Invalid multipart payload"))
		return
	}

	headers := request.MultipartForm.File[constants.PagesFormField]
	files := make([]File, 0, len(headers))
	closers := make([]interface{ Close() error }, 0, len(headers))
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	for _, header := range headers {
		opened, err := header.Open()
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(constants.PagesFormField, "Unreadable file in payload"))
			return
		}
		closers = append(closers, opened)
		files = append(files, File{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Body:        opened,
		})
	}

	result, err := handler.service.UploadChapterPages(request.Context(), chapterID, files)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
GET /api/media/signed-url?key=covers/12/1700000000000.jpg.

Description: Resolves a raw storage key (bare or "r2:"-tagged) into a
fetchable URL.

Response:
  - 200: {"url": "https://..."}
  - 400: ErrValidation: Missing key parameter
  - 404: ErrNotFound: Key cannot be resolved
*/
func (handler *Handler) SignedURL(writer http.ResponseWriter, request *http.Request) {
	key := request.URL.Query().Get("key")

	url, err := handler.service.SignedURL(request.Context(), key)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, signedURLResponse{URL: url})
}

/*
GET /api/r2/status.

Description: Reports whether the object-storage adapter holds usable
credentials. Allows the SPA to hide upload affordances when storage is off.

Response:
  - 200: {"connected": true, "message": "R2 storage is configured"}
*/
func (handler *Handler) StorageStatus(writer http.ResponseWriter, request *http.Request) {
	status := storageStatusResponse{Connected: handler.service.Configured()}
	if status.Connected {
		status.Message = "R2 storage is configured"
	} else {
		status.Message = "R2 storage is not configured"
	}
	respond.OK(writer, status)
}

/*
GET /api/comics/{comicId}/uploads.

Description: Returns the upload ledger of a comic, newest first. The ledger
is append-only, so entries survive chapter and page deletion. The identifier
may be either form.

Response:
  - 200: []Upload: Ledger entries
  - 404: ErrNotFound: Comic not found
*/
func (handler *Handler) ListUploads(writer http.ResponseWriter, request *http.Request) {
	comicID := requestutil.ID(request, "comicId")

	uploads, err := handler.service.UploadsForComic(request.Context(), comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, uploads)
}

// multipartOverhead is headroom for multipart boundaries and form fields on
// top of the raw file size limits.
const multipartOverhead = 1 << 20

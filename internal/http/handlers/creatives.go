package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/creative"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/domain"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/middleware"
)

// genericFailureMessage is the single undifferentiated payload returned for
// any pipeline failure. The typed cause is logged server-side only.
const genericFailureMessage = "Please Try Again"

type creativeSuccessResponse struct {
	ImageURL string `json:"imageUrl"`
}

type creativeFailureResponse struct {
	Error string `json:"error"`
}

// CreativesGenerate accepts the multipart submission and runs the full
// generation pipeline synchronously, answering with the final hosted image
// URL. Pipeline failures keep the 200 envelope with the generic error body,
// matching the public contract; only intake validation maps to 400.
func (a *App) CreativesGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)

	req, err := a.parseCreativeRequest(r)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	finalURL, err := a.Runner.Run(r.Context(), req)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("user_email", req.UserEmail).
			Msg("creatives: generation failed")
		a.json(w, http.StatusOK, creativeFailureResponse{Error: genericFailureMessage})
		return
	}

	a.json(w, http.StatusOK, creativeSuccessResponse{ImageURL: finalURL})
}

// CreativeStatus returns the tracking record for one job. Deleted (failed)
// jobs are indistinguishable from never-created ones.
func (a *App) CreativeStatus(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "doc_id")
	if docID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "doc_id required")
		return
	}
	job, err := a.Jobs.GetByDocID(r.Context(), docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"docId":                job.DocID,
		"userEmail":            job.UserEmail,
		"status":               job.Status,
		"description":          job.Description,
		"size":                 job.Size,
		"finalProductImageUrl": job.FinalProductImageURL,
		"productImageUrl":      job.ProductImageURL,
		"imageToVideoPrompt":   job.ImageToVideoPrompt,
		"createdAt":            job.CreatedAt,
		"updatedAt":            job.UpdatedAt,
	})
}

// parseCreativeRequest validates the multipart form into a typed request.
// Required: userEmail, plus exactly one image source (file or imageUrl).
func (a *App) parseCreativeRequest(r *http.Request) (creative.Request, error) {
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		return creative.Request{}, fmt.Errorf("parse multipart form: %w", err)
	}

	req := creative.Request{
		ImageURL:    strings.TrimSpace(r.FormValue("imageUrl")),
		AvatarURL:   r.FormValue("avatar"),
		Description: r.FormValue("description"),
		Size:        r.FormValue("size"),
		UserEmail:   strings.TrimSpace(r.FormValue("userEmail")),
	}

	if req.UserEmail == "" {
		return creative.Request{}, fmt.Errorf("%w: userEmail", domain.ErrMissingField)
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			return creative.Request{}, fmt.Errorf("read uploaded file: %w", readErr)
		}
		req.FileData = data
		req.FileContentType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
		if req.ImageURL == "" {
			return creative.Request{}, fmt.Errorf("%w: file or imageUrl", domain.ErrMissingField)
		}
	default:
		return creative.Request{}, fmt.Errorf("read form file: %w", err)
	}

	return req, nil
}

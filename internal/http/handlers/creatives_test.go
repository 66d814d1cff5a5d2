package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/creative"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/domain"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/infra"
)

type stubRunner struct {
	gotReq creative.Request
	url    string
	err    error
	calls  int
}

func (s *stubRunner) Run(ctx context.Context, req creative.Request) (string, error) {
	s.calls++
	s.gotReq = req
	return s.url, s.err
}

type stubJobs struct {
	jobs map[string]*domain.CreativeJob
}

func (s *stubJobs) Create(ctx context.Context, job *domain.CreativeJob) error { return nil }
func (s *stubJobs) Complete(ctx context.Context, docID string, result domain.CreativeResult) error {
	return nil
}
func (s *stubJobs) Delete(ctx context.Context, docID string) error { return nil }
func (s *stubJobs) GetByDocID(ctx context.Context, docID string) (*domain.CreativeJob, error) {
	if job, ok := s.jobs[docID]; ok {
		return job, nil
	}
	return nil, domain.ErrNotFound
}

func newTestApp(runner CreativeRunner, jobs domain.JobRepository) *App {
	discard := zerolog.New(io.Discard)
	logger := infra.Logger(discard)
	return NewApp(runner, jobs, &logger, 10<<20)
}

type formField struct {
	name  string
	value string
}

func multipartBody(t *testing.T, fields []formField, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			t.Fatalf("write field %s: %v", f.name, err)
		}
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("write file data: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestCreativesGenerateSuccess(t *testing.T) {
	runner := &stubRunner{url: "https://img.example.com/final.png"}
	app := newTestApp(runner, &stubJobs{})

	body, contentType := multipartBody(t, []formField{
		{"userEmail", "owner@example.com"},
		{"description", "a mug"},
		{"size", "1080x1080"},
		{"imageUrl", "https://cdn.example.com/mug.png"},
		{"avatar", "https://cdn.example.com/avatar.png"},
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/creatives", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.CreativesGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["imageUrl"] != "https://img.example.com/final.png" {
		t.Errorf("imageUrl = %q", resp["imageUrl"])
	}
	if runner.gotReq.UserEmail != "owner@example.com" ||
		runner.gotReq.ImageURL != "https://cdn.example.com/mug.png" ||
		runner.gotReq.AvatarURL != "https://cdn.example.com/avatar.png" ||
		runner.gotReq.Description != "a mug" ||
		runner.gotReq.Size != "1080x1080" {
		t.Errorf("request not passed through: %+v", runner.gotReq)
	}
}

func TestCreativesGenerateWithFileUpload(t *testing.T) {
	runner := &stubRunner{url: "https://img.example.com/final.png"}
	app := newTestApp(runner, &stubJobs{})

	fileData := bytes.Repeat([]byte("img"), 50)
	body, contentType := multipartBody(t, []formField{
		{"userEmail", "owner@example.com"},
	}, "product.jpg", fileData)

	req := httptest.NewRequest(http.MethodPost, "/api/creatives", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.CreativesGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(runner.gotReq.FileData, fileData) {
		t.Errorf("file bytes not passed through")
	}
}

func TestCreativesGenerateValidation(t *testing.T) {
	cases := []struct {
		name   string
		fields []formField
	}{
		{
			name:   "missing userEmail",
			fields: []formField{{"imageUrl", "https://cdn.example.com/mug.png"}},
		},
		{
			name:   "missing image source",
			fields: []formField{{"userEmail", "owner@example.com"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &stubRunner{url: "https://img.example.com/final.png"}
			app := newTestApp(runner, &stubJobs{})

			body, contentType := multipartBody(t, tc.fields, "", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/creatives", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			app.CreativesGenerate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if runner.calls != 0 {
				t.Errorf("pipeline should not run on invalid intake")
			}
		})
	}
}

func TestCreativesGenerateFailureKeepsUniformPayload(t *testing.T) {
	runner := &stubRunner{err: errors.New("gemini status 500: overloaded")}
	app := newTestApp(runner, &stubJobs{})

	body, contentType := multipartBody(t, []formField{
		{"userEmail", "owner@example.com"},
		{"imageUrl", "https://cdn.example.com/mug.png"},
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/creatives", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.CreativesGenerate(rec, req)

	// The public contract keeps a 200 envelope with the generic error body.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != "Please Try Again" {
		t.Errorf("error = %q", resp["error"])
	}
	if _, ok := resp["imageUrl"]; ok {
		t.Errorf("failure body should not carry imageUrl")
	}
}

func TestCreativeStatus(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	jobs := &stubJobs{jobs: map[string]*domain.CreativeJob{
		"1748779200000": {
			DocID:                "1748779200000",
			UserEmail:            "owner@example.com",
			Status:               domain.JobStatusCompleted,
			FinalProductImageURL: "https://img.example.com/final.png",
			ProductImageURL:      "https://img.example.com/original.png",
			ImageToVideoPrompt:   "orbit slowly",
			CreatedAt:            createdAt,
			UpdatedAt:            createdAt,
		},
	}}
	app := newTestApp(&stubRunner{}, jobs)

	router := chi.NewRouter()
	router.Get("/api/creatives/{doc_id}", app.CreativeStatus)

	req := httptest.NewRequest(http.MethodGet, "/api/creatives/1748779200000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != string(domain.JobStatusCompleted) {
		t.Errorf("status field = %v", resp["status"])
	}
	if resp["finalProductImageUrl"] != "https://img.example.com/final.png" {
		t.Errorf("finalProductImageUrl = %v", resp["finalProductImageUrl"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/creatives/unknown", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing job status = %d", rec.Code)
	}
}

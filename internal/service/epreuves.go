package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

// Epreuves covers browsing, uploading and downloading exam papers.
type Epreuves struct {
	api    API
	logger *logger.Logger
}

func NewEpreuves(api API, logger *logger.Logger) *Epreuves {
	return &Epreuves{api: api, logger: logger}
}

func (s *Epreuves) List(ctx context.Context, params model.ListParams) (model.Page[model.Epreuve], error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("search", params.Search)
	set("matiere", params.Matiere)
	set("niveau", params.Niveau)
	set("type_epreuve", params.TypeEpreuve)
	set("annee_academique", params.AnneeAcademique)
	set("ordering", params.Ordering)

	var page model.Page[model.Epreuve]
	if err := call(ctx, s.api, http.MethodGet, "/epreuves/", nil, &page, apiclient.WithQuery(q)); err != nil {
		return model.Page[model.Epreuve]{}, fmt.Errorf("failed to list epreuves: %w", err)
	}
	return page, nil
}

func (s *Epreuves) Get(ctx context.Context, id int64) (model.Epreuve, error) {
	var ep model.Epreuve
	if err := call(ctx, s.api, http.MethodGet, epreuvePath(id, ""), nil, &ep); err != nil {
		return model.Epreuve{}, fmt.Errorf("failed to get epreuve %d: %w", id, err)
	}
	return ep, nil
}

// Upload sends the metadata and PDF as a multipart form.
func (s *Epreuves) Upload(ctx context.Context, input model.UploadInput, pdf io.Reader) (model.UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"titre", input.Titre},
		{"matiere", input.Matiere},
		{"niveau", input.Niveau},
		{"type_epreuve", input.TypeEpreuve},
		{"annee_academique", input.AnneeAcademique},
		{"professeur", input.Professeur},
		{"description", input.Description},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return model.UploadResult{}, fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}

	name := input.FileName
	if name == "" {
		name = "epreuve.pdf"
	}
	part, err := w.CreateFormFile("fichier_pdf", name)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, pdf); err != nil {
		return model.UploadResult{}, fmt.Errorf("failed to read pdf: %w", err)
	}
	if err := w.Close(); err != nil {
		return model.UploadResult{}, fmt.Errorf("failed to close form: %w", err)
	}

	var result model.UploadResult
	err = call(ctx, s.api, http.MethodPost, "/epreuves/upload/", buf.Bytes(), &result,
		apiclient.WithHeader("Content-Type", w.FormDataContentType()))
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("failed to upload epreuve: %w", err)
	}

	s.logger.Info("Epreuves service: uploaded",
		"epreuve_id", result.Epreuve.ID,
		"titre", result.Epreuve.Titre)

	return result, nil
}

func (s *Epreuves) Update(ctx context.Context, id int64, update model.EpreuveUpdate) (model.Epreuve, error) {
	var ep model.Epreuve
	if err := call(ctx, s.api, http.MethodPatch, epreuvePath(id, ""), update, &ep); err != nil {
		return model.Epreuve{}, fmt.Errorf("failed to update epreuve %d: %w", id, err)
	}
	return ep, nil
}

func (s *Epreuves) Delete(ctx context.Context, id int64) error {
	if err := call(ctx, s.api, http.MethodDelete, epreuvePath(id, ""), nil, nil); err != nil {
		return fmt.Errorf("failed to delete epreuve %d: %w", id, err)
	}
	return nil
}

// Download resolves the download endpoint. It answers either with a redirect
// to the file host or with the file itself.
func (s *Epreuves) Download(ctx context.Context, id int64) (model.Download, error) {
	resp, err := s.api.Request(ctx, http.MethodGet, epreuvePath(id, "download/"), nil, apiclient.WithoutRedirects())
	if err != nil {
		return model.Download{}, fmt.Errorf("failed to download epreuve %d: %w", id, err)
	}

	if resp.IsRedirect() {
		location := resp.Header.Get("Location")
		if location == "" {
			return model.Download{}, fmt.Errorf("failed to download epreuve %d: redirect without location", id)
		}
		return model.Download{Location: location}, nil
	}
	if err := resp.Err(); err != nil {
		return model.Download{}, fmt.Errorf("failed to download epreuve %d: %w", id, err)
	}

	return model.Download{Content: resp.Body, ContentType: resp.Header.Get("Content-Type")}, nil
}

// PreviewURL returns the URL a PDF viewer should load, or "" if there is none.
func (s *Epreuves) PreviewURL(ctx context.Context, id int64) (string, error) {
	ep, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if ep.PreviewURL != "" {
		return ep.PreviewURL, nil
	}
	return ep.FichierURL, nil
}

func (s *Epreuves) RecordView(ctx context.Context, id int64) error {
	if err := call(ctx, s.api, http.MethodPost, epreuvePath(id, "view/"), nil, nil); err != nil {
		return fmt.Errorf("failed to record view of epreuve %d: %w", id, err)
	}
	return nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

const pdfContentType = "application/pdf"

// MirrorResult reports where an exam PDF was mirrored to.
type MirrorResult struct {
	EpreuveID int64  `json:"epreuve_id"`
	Key       string `json:"key"`
	Size      int64  `json:"size"`
	Skipped   bool   `json:"skipped"`
}

// Mirror copies exam PDFs into object storage.
type Mirror struct {
	epreuves *Epreuves
	storage  model.Storage
	files    apiclient.Doer
	baseURL  *url.URL
	logger   *logger.Logger
}

// NewMirror creates a Mirror. files fetches redirect targets, which live on a
// third-party file host and never receive the API credentials. Relative
// redirect targets are resolved against baseURL.
func NewMirror(epreuves *Epreuves, storage model.Storage, files apiclient.Doer, baseURL string, logger *logger.Logger) (*Mirror, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	return &Mirror{epreuves: epreuves, storage: storage, files: files, baseURL: u, logger: logger}, nil
}

// ObjectKey is where the PDF of an exam is stored.
func ObjectKey(epreuveID int64) string {
	return "epreuves/" + strconv.FormatInt(epreuveID, 10) + ".pdf"
}

// Mirror stores the PDF of one exam unless it is already there.
func (m *Mirror) Mirror(ctx context.Context, epreuveID int64) (MirrorResult, error) {
	key := ObjectKey(epreuveID)
	result := MirrorResult{EpreuveID: epreuveID, Key: key}

	exists, err := m.storage.Exists(ctx, key)
	if err != nil {
		return result, fmt.Errorf("failed to check storage: %w", err)
	}
	if exists {
		m.logger.Debug("Mirror service: already mirrored",
			"epreuve_id", epreuveID,
			"key", key)
		result.Skipped = true
		return result, nil
	}

	dl, err := m.epreuves.Download(ctx, epreuveID)
	if err != nil {
		return result, err
	}

	content := dl.Content
	contentType := dl.ContentType
	if dl.Location != "" {
		content, contentType, err = m.fetch(ctx, dl.Location)
		if err != nil {
			return result, fmt.Errorf("failed to fetch epreuve %d: %w", epreuveID, err)
		}
	}
	if contentType == "" {
		contentType = pdfContentType
	}

	size := int64(len(content))
	if err := m.storage.Upload(ctx, key, bytes.NewReader(content), size, contentType); err != nil {
		m.logger.Error("Mirror service: failed to upload",
			"epreuve_id", epreuveID,
			"key", key,
			"error", err.Error())
		return result, fmt.Errorf("failed to upload to storage: %w", err)
	}

	m.logger.Info("Mirror service: mirrored",
		"epreuve_id", epreuveID,
		"key", key,
		"size", size)

	result.Size = size
	return result, nil
}

// MirrorAll mirrors each exam in turn and stops at the first failure.
func (m *Mirror) MirrorAll(ctx context.Context, ids []int64) ([]MirrorResult, error) {
	results := make([]MirrorResult, 0, len(ids))
	for _, id := range ids {
		res, err := m.Mirror(ctx, id)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (m *Mirror) fetch(ctx context.Context, location string) ([]byte, string, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return nil, "", fmt.Errorf("parse location: %w", err)
	}
	target := m.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := m.files.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("file host answered %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

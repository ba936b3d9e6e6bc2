package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

type Commentaires struct {
	api    API
	logger *logger.Logger
}

func NewCommentaires(api API, logger *logger.Logger) *Commentaires {
	return &Commentaires{api: api, logger: logger}
}

// List returns the comments on an exam. The endpoint answers with a bare
// array or with a paginated object depending on server settings.
func (s *Commentaires) List(ctx context.Context, epreuveID int64) ([]model.Commentaire, error) {
	q := url.Values{"epreuve": {strconv.FormatInt(epreuveID, 10)}}
	resp, err := s.api.Request(ctx, http.MethodGet, "/commentaires/", nil, apiclient.WithQuery(q))
	if err != nil {
		return nil, fmt.Errorf("failed to list commentaires: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("failed to list commentaires: %w", err)
	}

	items, err := decodeList[model.Commentaire](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to list commentaires: %w", err)
	}
	return items, nil
}

type commentaireInput struct {
	Contenu string `json:"contenu"`
	Parent  *int64 `json:"parent,omitempty"`
	Epreuve int64  `json:"epreuve"`
}

// Create posts a comment. A non-nil parent makes it a reply.
func (s *Commentaires) Create(ctx context.Context, epreuveID int64, contenu string, parent *int64) (model.Commentaire, error) {
	var c model.Commentaire
	body := commentaireInput{Contenu: contenu, Parent: parent, Epreuve: epreuveID}
	if err := call(ctx, s.api, http.MethodPost, "/commentaires/", body, &c); err != nil {
		return model.Commentaire{}, fmt.Errorf("failed to create commentaire: %w", err)
	}
	return c, nil
}

func (s *Commentaires) Update(ctx context.Context, id int64, contenu string) (model.Commentaire, error) {
	var c model.Commentaire
	path := "/commentaires/" + strconv.FormatInt(id, 10) + "/"
	if err := call(ctx, s.api, http.MethodPatch, path, map[string]string{"contenu": contenu}, &c); err != nil {
		return model.Commentaire{}, fmt.Errorf("failed to update commentaire %d: %w", id, err)
	}
	return c, nil
}

func (s *Commentaires) Delete(ctx context.Context, id int64) error {
	path := "/commentaires/" + strconv.FormatInt(id, 10) + "/"
	if err := call(ctx, s.api, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete commentaire %d: %w", id, err)
	}
	return nil
}

// decodeList accepts a JSON array or an object with a results array.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var page model.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}

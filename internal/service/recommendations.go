package service

import (
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

const (
	defaultTopK = 10
	maxTopK     = 100
)

type Recommendations struct {
	api    API
	logger *logger.Logger
}

func NewRecommendations(api API, logger *logger.Logger) *Recommendations {
	return &Recommendations{api: api, logger: logger}
}

type personalizedResponse struct {
	UserID          int64                  `json:"user_id"`
	Username        string                 `json:"username"`
	Count           int                    `json:"count"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

// Personalized returns up to limit exams recommended for the caller.
func (s *Recommendations) Personalized(ctx context.Context, limit int) ([]model.Epreuve, error) {
	q := url.Values{"top_k": {strconv.Itoa(topK(limit))}}

	var out personalizedResponse
	err := call(ctx, s.api, http.MethodGet, "/recommendations/personalized/", nil, &out, apiclient.WithQuery(q))
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}

	eps := make([]model.Epreuve, 0, len(out.Recommendations))
	for _, r := range out.Recommendations {
		eps = append(eps, r.Epreuve())
	}
	return dedupe(eps), nil
}

type similarResponse struct {
	SimilarEpreuves []model.Recommendation `json:"similar_epreuves"`
	SimilarItems    []struct {
		Epreuve *model.Epreuve `json:"epreuve"`
	} `json:"similar_items"`
}

// Similar returns up to limit exams close to epreuveID.
func (s *Recommendations) Similar(ctx context.Context, epreuveID int64, limit int) ([]model.Epreuve, error) {
	q := url.Values{
		"epreuve_id": {strconv.FormatInt(epreuveID, 10)},
		"top_k":      {strconv.Itoa(topK(limit))},
	}

	resp, err := s.api.Request(ctx, http.MethodGet, "/recommendations/similar/", nil, apiclient.WithQuery(q))
	if err != nil {
		return nil, fmt.Errorf("failed to get similar epreuves: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("failed to get similar epreuves: %w", err)
	}

	eps, err := decodeSimilar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to get similar epreuves: %w", err)
	}
	return dedupe(eps), nil
}

// decodeSimilar accepts the three shapes the recommender has served:
// {similar_epreuves: [...]}, {similar_items: [{epreuve}]} and a bare array.
func decodeSimilar(body []byte) ([]model.Epreuve, error) {
	var bare []model.Epreuve
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var obj similarResponse
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decode similar epreuves: %w", err)
	}

	if len(obj.SimilarEpreuves) > 0 {
		eps := make([]model.Epreuve, 0, len(obj.SimilarEpreuves))
		for _, r := range obj.SimilarEpreuves {
			eps = append(eps, r.Epreuve())
		}
		return eps, nil
	}

	eps := make([]model.Epreuve, 0, len(obj.SimilarItems))
	for _, item := range obj.SimilarItems {
		if item.Epreuve != nil {
			eps = append(eps, *item.Epreuve)
		}
	}
	return eps, nil
}

func (s *Recommendations) ModelStatus(ctx context.Context) (model.ModelStatus, error) {
	var status model.ModelStatus
	if err := call(ctx, s.api, http.MethodGet, "/recommendations/status/", nil, &status); err != nil {
		return model.ModelStatus{}, fmt.Errorf("failed to get model status: %w", err)
	}
	return status, nil
}

func topK(limit int) int {
	switch {
	case limit <= 0:
		return defaultTopK
	case limit > maxTopK:
		return maxTopK
	default:
		return limit
	}
}

// dedupe drops entries without an ID and keeps the first of each ID.
func dedupe(eps []model.Epreuve) []model.Epreuve {
	seen := make(map[int64]struct{}, len(eps))
	out := make([]model.Epreuve, 0, len(eps))
	for _, ep := range eps {
		if ep.ID == 0 {
			continue
		}
		if _, ok := seen[ep.ID]; ok {
			continue
		}
		seen[ep.ID] = struct{}{}
		out = append(out, ep)
	}
	return out
}

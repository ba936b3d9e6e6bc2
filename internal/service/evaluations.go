package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

const (
	minNote = 1
	maxNote = 5
)

type Evaluations struct {
	api    API
	logger *logger.Logger
}

func NewEvaluations(api API, logger *logger.Logger) *Evaluations {
	return &Evaluations{api: api, logger: logger}
}

type evaluationInput struct {
	NoteDifficulte int   `json:"note_difficulte"`
	NotePertinence int   `json:"note_pertinence"`
	Epreuve        int64 `json:"epreuve"`
}

// Submit creates or replaces the caller's rating of an exam. Notes run from 1 to 5.
func (s *Evaluations) Submit(ctx context.Context, epreuveID int64, difficulte, pertinence int) (model.Evaluation, error) {
	for name, v := range map[string]int{"difficulte": difficulte, "pertinence": pertinence} {
		if v < minNote || v > maxNote {
			return model.Evaluation{}, fmt.Errorf("note_%s must be between %d and %d, got %d", name, minNote, maxNote, v)
		}
	}

	var ev model.Evaluation
	body := evaluationInput{NoteDifficulte: difficulte, NotePertinence: pertinence, Epreuve: epreuveID}
	if err := call(ctx, s.api, http.MethodPost, "/evaluations/", body, &ev); err != nil {
		return model.Evaluation{}, fmt.Errorf("failed to submit evaluation: %w", err)
	}
	return ev, nil
}

// ForEpreuve lists the evaluations of an exam visible to the caller.
func (s *Evaluations) ForEpreuve(ctx context.Context, epreuveID int64) ([]model.Evaluation, error) {
	q := url.Values{"epreuve": {strconv.FormatInt(epreuveID, 10)}}
	resp, err := s.api.Request(ctx, http.MethodGet, "/evaluations/", nil, apiclient.WithQuery(q))
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	items, err := decodeList[model.Evaluation](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return items, nil
}

// Mine returns the caller's evaluation of an exam, or nil if there is none.
func (s *Evaluations) Mine(ctx context.Context, epreuveID int64) (*model.Evaluation, error) {
	items, err := s.ForEpreuve(ctx, epreuveID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

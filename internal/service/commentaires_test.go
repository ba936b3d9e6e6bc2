package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshare/examshare-client/internal/model"
	"github.com/examshare/examshare-client/internal/testutil"
)

func TestCommentaires_List(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []int64
	}{
		{name: "bare array", body: `[{"id":1,"contenu":"a"},{"id":2,"contenu":"b"}]`, wantIDs: []int64{1, 2}},
		{name: "paginated", body: `{"count":1,"next":null,"previous":null,"results":[{"id":3,"contenu":"c"}]}`, wantIDs: []int64{3}},
		{name: "paginated without results", body: `{"count":0}`, wantIDs: []int64{}},
		{name: "empty array", body: `[]`, wantIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /commentaires/", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "12", r.URL.Query().Get("epreuve"))
				writeJSON(w, http.StatusOK, tt.body)
			})
			env := newTestEnv(t, mux)

			items, err := NewCommentaires(env.client, testutil.MakeNoopLogger()).List(context.Background(), 12)

			require.NoError(t, err)
			ids := make([]int64, 0, len(items))
			for _, c := range items {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCommentaires_List_Malformed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /commentaires/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `"nope"`)
	})
	env := newTestEnv(t, mux)

	_, err := NewCommentaires(env.client, testutil.MakeNoopLogger()).List(context.Background(), 1)
	assert.Error(t, err)
}

func TestCommentaires_Create(t *testing.T) {
	var bodies []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /commentaires/", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		bodies = append(bodies, m)
		writeJSON(w, http.StatusCreated, `{"id":30,"epreuve":12,"contenu":"Merci"}`)
	})
	env := newTestEnv(t, mux)
	s := NewCommentaires(env.client, testutil.MakeNoopLogger())

	c, err := s.Create(context.Background(), 12, "Merci", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(30), c.ID)

	parent := int64(30)
	_, err = s.Create(context.Background(), 12, "Réponse", &parent)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Equal(t, map[string]any{"contenu": "Merci", "epreuve": float64(12)}, bodies[0])
	assert.Equal(t, map[string]any{"contenu": "Réponse", "epreuve": float64(12), "parent": float64(30)}, bodies[1])
}

func TestCommentaires_UpdateAndDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /commentaires/4/", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		assert.Equal(t, map[string]string{"contenu": "édité"}, m)
		writeJSON(w, http.StatusOK, `{"id":4,"contenu":"édité"}`)
	})
	mux.HandleFunc("DELETE /commentaires/4/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /commentaires/5/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"detail":"You do not have permission to perform this action."}`)
	})
	env := newTestEnv(t, mux)
	s := NewCommentaires(env.client, testutil.MakeNoopLogger())

	c, err := s.Update(context.Background(), 4, "édité")
	require.NoError(t, err)
	assert.Equal(t, "édité", c.Contenu)

	require.NoError(t, s.Delete(context.Background(), 4))

	err = s.Delete(context.Background(), 5)
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

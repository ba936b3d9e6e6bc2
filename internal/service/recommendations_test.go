package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshare/examshare-client/internal/model"
	"github.com/examshare/examshare-client/internal/testutil"
)

func ids(eps []model.Epreuve) []int64 {
	out := make([]int64, 0, len(eps))
	for _, ep := range eps {
		out = append(out, ep.ID)
	}
	return out
}

func TestRecommendations_Personalized(t *testing.T) {
	var topKSeen string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /recommendations/personalized/", func(w http.ResponseWriter, r *http.Request) {
		topKSeen = r.URL.Query().Get("top_k")
		writeJSON(w, http.StatusOK, `{
			"user_id": 1, "username": "awa", "count": 4,
			"recommendations": [
				{"epreuve_id": 7, "score": 0.9, "titre": "Algèbre", "matiere": "Maths", "nb_vues": 3},
				{"epreuve_id": 0, "score": 0.8, "titre": "ghost"},
				{"epreuve_id": 7, "score": 0.7, "titre": "Algèbre bis"},
				{"epreuve_id": 9, "score": 0.5, "titre": "Physique"}
			]
		}`)
	})
	env := newTestEnv(t, mux)

	eps, err := NewRecommendations(env.client, testutil.MakeNoopLogger()).Personalized(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "5", topKSeen)
	assert.Equal(t, []int64{7, 9}, ids(eps))
	assert.Equal(t, "Algèbre", eps[0].Titre)
	assert.Equal(t, int64(3), eps[0].NbVues)
}

func TestRecommendations_Personalized_ModelNotTrained(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /recommendations/personalized/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"error":"Model not trained yet"}`)
	})
	env := newTestEnv(t, mux)

	_, err := NewRecommendations(env.client, testutil.MakeNoopLogger()).Personalized(context.Background(), 0)

	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Model not trained yet", apiErr.Detail)
}

func TestRecommendations_Similar_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []int64
	}{
		{
			name: "similar_epreuves",
			body: `{"epreuve_id":1,"count":2,"similar_epreuves":[{"epreuve_id":2,"titre":"a"},{"epreuve_id":3,"titre":"b"}]}`,
			want: []int64{2, 3},
		},
		{
			name: "similar_items",
			body: `{"similar_items":[{"epreuve":{"id":4}},{"epreuve":null},{"epreuve":{"id":4}},{"epreuve":{"id":5}}]}`,
			want: []int64{4, 5},
		},
		{
			name: "bare array",
			body: `[{"id":6},{"id":0},{"id":7}]`,
			want: []int64{6, 7},
		},
		{
			name: "empty object",
			body: `{}`,
			want: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /recommendations/similar/", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "1", r.URL.Query().Get("epreuve_id"))
				assert.Equal(t, "10", r.URL.Query().Get("top_k"))
				writeJSON(w, http.StatusOK, tt.body)
			})
			env := newTestEnv(t, mux)

			eps, err := NewRecommendations(env.client, testutil.MakeNoopLogger()).Similar(context.Background(), 1, 0)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(eps))
		})
	}
}

func TestRecommendations_ModelStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /recommendations/status/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"ready","model_version":"v3","architecture":"NCF","metrics":{"rmse":0.81,"precision_at_10":0.2}}`)
	})
	env := newTestEnv(t, mux)

	st, err := NewRecommendations(env.client, testutil.MakeNoopLogger()).ModelStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ready", st.Status)
	assert.Equal(t, "v3", st.ModelVersion)
	assert.InDelta(t, 0.81, st.Metrics["rmse"], 1e-9)
}

func TestTopK(t *testing.T) {
	assert.Equal(t, 10, topK(0))
	assert.Equal(t, 10, topK(-3))
	assert.Equal(t, 25, topK(25))
	assert.Equal(t, 100, topK(1000))
}

func TestDedupe(t *testing.T) {
	in := []model.Epreuve{{ID: 3, Titre: "first"}, {ID: 0}, {ID: 1}, {ID: 3, Titre: "second"}}

	out := dedupe(in)

	assert.Equal(t, []int64{3, 1}, ids(out))
	assert.Equal(t, "first", out[0].Titre)
}

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lovelush_server/models"

	"github.com/stretchr/testify/require"
)

func TestFetchCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "42", r.URL.Query().Get("user_id"))
		require.Equal(t, "3", r.URL.Query().Get("num_of_matches"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": []models.MatchCandidate{
				{UserID1: 42, UserID2: 7, Reason1: "shared taste", Reason2: "shared taste", MatchScore: 81},
				{UserID1: 42, UserID2: 9, Reason1: "same city", Reason2: "same city", MatchScore: 64},
			},
		})
	}))
	defer server.Close()

	rs := NewRecommendationService(server.URL)
	candidates, err := rs.FetchCandidates(context.Background(), 42, 3)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, int64(7), candidates[0].UserID2)
	require.Equal(t, 81, candidates[0].MatchScore)
}

func TestFetchCandidatesNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	rs := NewRecommendationService(server.URL)
	_, err := rs.FetchCandidates(context.Background(), 42, 1)
	require.Error(t, err)
}

func TestFetchCandidatesEmptyOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"output": []models.MatchCandidate{}})
	}))
	defer server.Close()

	rs := NewRecommendationService(server.URL)
	candidates, err := rs.FetchCandidates(context.Background(), 42, 1)
	require.NoError(t, err)
	require.Empty(t, candidates)
}

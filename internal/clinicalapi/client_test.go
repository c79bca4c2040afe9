package clinicalapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkimidis/acucare-pathways-sub001/internal/config"
)

func newTestClient(baseURL string) Client {
	return NewClient(config.Config{
		ClinicalAPIBaseURL: baseURL,
		ClinicalAPITimeout: 5 * time.Second,
	})
}

func TestFetchQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/queue", r.URL.Path)
		assert.Equal(t, "red", r.URL.Query().Get("tier"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(QueueResponse{
			Items:    nil,
			Total:    3,
			RedCount: 3,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	query := url.Values{}
	query.Set("tier", "red")

	resp, err := client.FetchQueue(context.Background(), "tok-1", query)

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 3, resp.Counts().RedCount)
}

func TestFetchQueueStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchQueue(context.Background(), "tok-stale", url.Values{})

	require.Error(t, err)
	assert.True(t, IsAuthRejection(err))
	assert.Contains(t, err.Error(), "token expired")
}

func TestCurrentRoster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/duty-roster/current", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"primary": map[string]string{"id": "usr_1", "display_name": "A. Osei"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	roster, err := client.CurrentRoster(context.Background(), "tok-1")

	require.NoError(t, err)
	require.NotNil(t, roster.Primary)
	assert.Equal(t, "usr_1", roster.Primary.ID)
	assert.Nil(t, roster.Backup)
}

func TestAssignmentActions(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		if r.Header.Get("Content-Type") == "application/json" {
			json.NewDecoder(r.Body).Decode(&gotBody)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx := context.Background()

	require.NoError(t, client.ClaimCase(ctx, "tok", "case-1"))
	assert.Equal(t, "/triage-cases/case-1/claim", gotPath)

	require.NoError(t, client.UnassignCase(ctx, "tok", "case-1"))
	assert.Equal(t, "/triage-cases/case-1/unassign", gotPath)

	require.NoError(t, client.ReassignCase(ctx, "tok", "case-1", "usr_2", "handover"))
	assert.Equal(t, "/triage-cases/case-1/reassign", gotPath)
	assert.Equal(t, "usr_2", gotBody["user_id"])
	assert.Equal(t, "handover", gotBody["reason"])
}

func TestActionPermissionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.ClaimCase(context.Background(), "tok", "case-1")

	require.Error(t, err)
	assert.True(t, IsAuthRejection(err))
}

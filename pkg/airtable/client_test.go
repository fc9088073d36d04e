package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRecords_FollowsPagination(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/base123/Companies", r.URL.Path)

		if r.URL.Query().Get("offset") == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{{"id": "rec1", "fields": map[string]any{"Name": "Acme"}}},
				"offset":  "page2",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{{"id": "rec2", "fields": map[string]any{"Name": "Beta"}}},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", "base123", WithBaseURL(srv.URL))
	got, err := c.ListRecords(context.Background(), "Companies", ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rec1", got[0].ID)
	assert.Equal(t, "Beta", got[1].Fields["Name"])
	assert.Equal(t, 2, calls)
}

func TestListRecords_FilterFormula(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `{Status} = "New"`, r.URL.Query().Get("filterByFormula"))
		json.NewEncoder(w).Encode(map[string]any{"records": []map[string]any{}})
	}))
	defer srv.Close()

	c := NewClient("k", "b", WithBaseURL(srv.URL))
	_, err := c.ListRecords(context.Background(), "Triggers", ListOptions{FilterByFormula: `{Status} = "New"`})
	require.NoError(t, err)
}

func TestCreateRecords_BatchesOfTen(t *testing.T) {
	var batchSizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Records []struct {
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		batchSizes = append(batchSizes, len(payload.Records))
		json.NewEncoder(w).Encode(map[string]any{"records": payload.Records})
	}))
	defer srv.Close()

	fields := make([]map[string]any, 12)
	for i := range fields {
		fields[i] = map[string]any{"Name": "x"}
	}

	c := NewClient("k", "b", WithBaseURL(srv.URL))
	created, err := c.CreateRecords(context.Background(), "Leads", fields)
	require.NoError(t, err)
	assert.Len(t, created, 12)
	assert.Equal(t, []int{10, 2}, batchSizes)
}

func TestUpdateRecord_Patch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/b/Leads/rec9", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id": "rec9", "fields": map[string]any{"Fit Score": float64(82)}})
	}))
	defer srv.Close()

	c := NewClient("k", "b", WithBaseURL(srv.URL))
	rec, err := c.UpdateRecord(context.Background(), "Leads", "rec9", map[string]any{"Fit Score": 82})
	require.NoError(t, err)
	assert.Equal(t, "rec9", rec.ID)
}

func TestDeleteRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		json.NewEncoder(w).Encode(map[string]any{"deleted": true, "id": "rec1"})
	}))
	defer srv.Close()

	c := NewClient("k", "b", WithBaseURL(srv.URL))
	assert.NoError(t, c.DeleteRecord(context.Background(), "Companies", "rec1"))
}

func TestAPIErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"RATE_LIMIT_REACHED"}}`))
	}))
	defer srv.Close()

	c := NewClient("k", "b", WithBaseURL(srv.URL))
	_, err := c.GetRecord(context.Background(), "Companies", "rec1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, eris.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_EmptyBaseURL(t *testing.T) {
	_, err := NewHTTPClient("")
	require.Error(t, err)
}

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewHTTPClient("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", c.baseURL)
}

func TestTranscribe_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/transcriptions", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "data:audio/webm;base64,AAAA", req["audioDataUri"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"transcription": "buy milk",
			"audioKey":      "recordings/x",
		})
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	text, audioKey, err := c.Transcribe(context.Background(), "data:audio/webm;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", text)
	assert.Equal(t, "recordings/x", audioKey)
}

func TestTranscribe_ServiceUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "The AI model is currently unavailable. Please try again later."})
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, _, err = c.Transcribe(context.Background(), "data:audio/webm;base64,AAAA")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "currently unavailable")
}

func TestDoJSON_TransportFailureMapsToUnavailable(t *testing.T) {
	c, err := NewHTTPClient("http://127.0.0.1:1")
	require.NoError(t, err)

	_, _, err = c.Transcribe(context.Background(), "data:audio/webm;base64,AAAA")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateLog_RoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/logs", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id": "e1", "ownerId": "owner-1", "text": "hello",
		})
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	entry, err := c.CreateLog(context.Background(), "owner-1", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, "owner-1", entry.OwnerID)
}

func TestDeleteLog_SendsOwnerQuery(t *testing.T) {
	var gotPath, gotOwner string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOwner = r.URL.Query().Get("owner")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	require.NoError(t, c.DeleteLog(context.Background(), "owner-1", "e1"))
	assert.Equal(t, "/api/logs/e1", gotPath)
	assert.Equal(t, "owner-1", gotOwner)
}

func TestDeleteLogs_ReturnsCount(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OwnerID string   `json:"ownerId"`
			IDs     []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a", "b"}, req.IDs)
		_ = json.NewEncoder(w).Encode(map[string]int{"deleted": 2})
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	n, err := c.DeleteLogs(context.Background(), "owner-1", []string{"a", "b"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestAdminLogin_StoresTokenPair(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken": "acc", "refreshToken": "ref",
		})
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	require.NoError(t, c.AdminLogin(context.Background(), "admin", "pw"))
	assert.Equal(t, "acc", c.accessToken)
	assert.Equal(t, "ref", c.refreshToken)
}

func TestAdminLogin_InvalidCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid username or password"})
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	err = c.AdminLogin(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAdminLogs_RefreshesExpiredTokenOnce(t *testing.T) {
	logCalls := 0
	refreshCalls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/logs":
			logCalls++
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"owners": []map[string]any{
					{"ownerId": "owner-1", "logs": []map[string]string{{"id": "e1", "text": "hello"}}},
				},
			})
		case "/api/admin/refresh":
			refreshCalls++
			var req struct {
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "stale-refresh", req.RefreshToken)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"accessToken": "fresh", "refreshToken": "fresh-refresh",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)
	c.accessToken = "stale"
	c.refreshToken = "stale-refresh"

	grouped, owners, err := c.AdminLogs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, logCalls)
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, []string{"owner-1"}, owners)
	require.Len(t, grouped["owner-1"], 1)
	assert.Equal(t, "fresh-refresh", c.refreshToken, "the pair is rotated")
}

func TestAdminLogs_NoSessionFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, _, err = c.AdminLogs(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

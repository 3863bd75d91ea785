package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/voicetasker/voicetasker/internal/client/models"
)

// HTTPClient talks to the backend REST API and dials the WebSocket feed.
// Admin calls attach the access token obtained by AdminLogin; on an expired
// token the call is retried once after a refresh, mirroring the token pair
// the server issues.
type HTTPClient struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}, nil
}

func (c *HTTPClient) Close() error { return nil }

type apiError struct {
	Error string `json:"error"`
}

// doJSON sends a JSON request and decodes a JSON response into out (when out
// is non-nil). Non-2xx statuses are mapped onto the client error set.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, out)
	}

	return c.mapError(resp.StatusCode, data)
}

func (c *HTTPClient) mapError(status int, body []byte) error {
	msg := ""
	e := apiError{}
	if err := json.Unmarshal(body, &e); err == nil {
		msg = e.Error
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrUnavailable, msg)
		}
		return ErrUnavailable
	default:
		if msg != "" {
			return errors.New(msg)
		}
		return fmt.Errorf("api error: status %d", status)
	}
}

type transcribeRequest struct {
	AudioDataURI string `json:"audioDataUri"`
}

type transcribeResponse struct {
	Transcription string `json:"transcription"`
	AudioKey      string `json:"audioKey"`
}

func (c *HTTPClient) Transcribe(ctx context.Context, audioDataURI string) (string, string, error) {
	var resp transcribeResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/transcriptions", transcribeRequest{AudioDataURI: audioDataURI}, &resp)
	if err != nil {
		return "", "", err
	}
	return resp.Transcription, resp.AudioKey, nil
}

type createLogRequest struct {
	OwnerID  string `json:"ownerId"`
	Text     string `json:"text"`
	AudioKey string `json:"audioKey"`
}

func (c *HTTPClient) CreateLog(ctx context.Context, ownerID, text, audioKey string) (*models.LogEntry, error) {
	entry := &models.LogEntry{}
	err := c.doJSON(ctx, http.MethodPost, "/api/logs", createLogRequest{OwnerID: ownerID, Text: text, AudioKey: audioKey}, entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (c *HTTPClient) DeleteLog(ctx context.Context, ownerID, id string) error {
	path := fmt.Sprintf("/api/logs/%s?owner=%s", url.PathEscape(id), url.QueryEscape(ownerID))
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

type batchDeleteRequest struct {
	OwnerID string   `json:"ownerId"`
	IDs     []string `json:"ids"`
}

type batchDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func (c *HTTPClient) DeleteLogs(ctx context.Context, ownerID string, ids []string) (int64, error) {
	var resp batchDeleteResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/logs/batch-delete", batchDeleteRequest{OwnerID: ownerID, IDs: ids}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

func (c *HTTPClient) ReportVisit(ctx context.Context, visit *models.Visit) error {
	return c.doJSON(ctx, http.MethodPost, "/api/visits", visit, nil)
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (c *HTTPClient) AdminLogin(ctx context.Context, username, password string) error {
	var resp tokenPairResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/login", adminLoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

type adminRefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	if c.refreshToken == "" {
		return ErrUnauthorized
	}
	var resp tokenPairResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/refresh", adminRefreshRequest{RefreshToken: c.refreshToken}, &resp)
	if err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

type adminLogsResponse struct {
	Owners []struct {
		OwnerID string            `json:"ownerId"`
		Logs    []models.LogEntry `json:"logs"`
	} `json:"owners"`
}

func (c *HTTPClient) AdminLogs(ctx context.Context) (map[string][]models.LogEntry, []string, error) {
	var resp adminLogsResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/logs", nil, &resp)
	if errors.Is(err, ErrUnauthorized) && c.refreshToken != "" {
		// Access token may have expired; rotate once and retry.
		if rerr := c.refresh(ctx); rerr != nil {
			return nil, nil, rerr
		}
		err = c.doJSON(ctx, http.MethodGet, "/api/admin/logs", nil, &resp)
	}
	if err != nil {
		return nil, nil, err
	}

	grouped := make(map[string][]models.LogEntry, len(resp.Owners))
	owners := make([]string, 0, len(resp.Owners))
	for _, g := range resp.Owners {
		grouped[g.OwnerID] = g.Logs
		owners = append(owners, g.OwnerID)
	}
	return grouped, owners, nil
}

package repository

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
	"sync"
	"time"

	"pdf-ocr-webhook/internal/domain"
)

const defaultBaseURL = "https://pdf-services.adobe.io"

// AdobeClient implements domain.OCRProvider against the Adobe PDF
// Services REST API. The credential session (access token) is cached
// and shared read-only across concurrent jobs.
type AdobeClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       domain.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewAdobeClient creates a provider client from the configured
// client-id/secret pair.
func NewAdobeClient(config domain.Config, logger domain.Logger) *AdobeClient {
	interval := time.Duration(config.GetPollInterval()) * time.Millisecond
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &AdobeClient{
		baseURL:      defaultBaseURL,
		clientID:     config.GetAdobeClientID(),
		clientSecret: config.GetAdobeClientSecret(),
		pollInterval: interval,
		httpClient:   &http.Client{},
		logger:       logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// token returns a cached access token, refreshing it when it is within
// a minute of expiry.
func (c *AdobeClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: %s", readErrorBody(resp))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *AdobeClient) newAPIRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-api-key", c.clientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type assetCreateResponse struct {
	AssetID   string `json:"assetID"`
	UploadURI string `json:"uploadUri"`
}

// Upload reserves an asset slot, then PUTs the bytes to the returned
// presigned URI.
func (c *AdobeClient) Upload(ctx context.Context, data []byte, mediaType string) (*domain.RemoteAsset, error) {
	payload, _ := json.Marshal(map[string]string{"mediaType": mediaType})
	req, err := c.newAPIRequest(ctx, http.MethodPost, "/assets", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create asset failed: %s", readErrorBody(resp))
	}

	var created assetCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode asset response: %w", err)
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, created.UploadURI, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	putReq.Header.Set("Content-Type", mediaType)
	putReq.ContentLength = int64(len(data))

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return nil, fmt.Errorf("upload bytes: %w", err)
	}
	defer putResp.Body.Close()

	if putResp.StatusCode >= 300 {
		return nil, fmt.Errorf("upload bytes failed: %s", readErrorBody(putResp))
	}

	c.logger.Debug("Uploaded input asset", "asset_id", created.AssetID, "bytes", len(data))
	return &domain.RemoteAsset{ID: created.AssetID}, nil
}

// Submit starts an OCR operation for the uploaded asset and returns the
// job status location.
func (c *AdobeClient) Submit(ctx context.Context, job domain.OCRJobSpec) (string, error) {
	if job.Input == nil {
		return "", errors.New("job has no input asset")
	}
	payload, _ := json.Marshal(map[string]string{
		"assetID": job.Input.ID,
		"ocrLang": job.Options.Locale,
		"ocrType": strings.ToLower(string(job.Options.Type)),
	})

	req, err := c.newAPIRequest(ctx, http.MethodPost, "/operation/ocr", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("submit job failed: %s", readErrorBody(resp))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.New("submit response missing Location header")
	}
	return location, nil
}

type jobStatusResponse struct {
	Status string `json:"status"`
	Asset  *struct {
		AssetID     string `json:"assetID"`
		DownloadURI string `json:"downloadUri"`
	} `json:"asset"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AwaitResult polls the job location until the provider reports done or
// failed. The only timeout honored here is the caller's context.
func (c *AdobeClient) AwaitResult(ctx context.Context, location string) (*domain.RemoteAsset, error) {
	for {
		status, err := c.jobStatus(ctx, location)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "done":
			if status.Asset == nil {
				return nil, errors.New("job done but no result asset")
			}
			return &domain.RemoteAsset{
				ID:          status.Asset.AssetID,
				DownloadURI: status.Asset.DownloadURI,
			}, nil
		case "failed":
			if status.Error != nil {
				return nil, fmt.Errorf("job failed: %s (%s)", status.Error.Message, status.Error.Code)
			}
			return nil, errors.New("job failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *AdobeClient) jobStatus(ctx context.Context, location string) (*jobStatusResponse, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	// Location is absolute; do not prefix the base URL.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-api-key", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll job failed: %s", readErrorBody(resp))
	}

	var status jobStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode job status: %w", err)
	}
	return &status, nil
}

// FetchContent downloads the asset's presigned URI in full.
func (c *AdobeClient) FetchContent(ctx context.Context, asset *domain.RemoteAsset) ([]byte, error) {
	if asset == nil || asset.DownloadURI == "" {
		return nil, errors.New("asset has no download URI")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURI, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download result failed: %s", readErrorBody(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read result body: %w", err)
	}
	return data, nil
}

// DeleteAsset removes an asset from the provider. No-ops on a nil or
// empty handle so cleanup can call it unconditionally.
func (c *AdobeClient) DeleteAsset(ctx context.Context, asset *domain.RemoteAsset) error {
	if asset == nil || asset.ID == "" {
		return nil
	}

	req, err := c.newAPIRequest(ctx, http.MethodDelete, "/assets/"+asset.ID, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete asset failed: %s", readErrorBody(resp))
	}
	return nil
}

func readErrorBody(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return resp.Status
	}
	return resp.Status + ": " + msg
}

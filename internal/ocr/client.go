// Package ocr talks to the external OCR parse service used for file types
// the local parsers cannot handle (scanned PDFs, images). The service works
// in batches: request pre-signed upload URLs, PUT the raw files, poll the
// batch until every task is terminal, then download a zip per file and pull
// the markdown out of it.
package ocr

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// MaxBatchSize is the service's per-batch file limit.
	MaxBatchSize = 200
	// MaxFileSize is the service's per-file size limit.
	MaxFileSize = 200 * 1024 * 1024
)

// Client communicates with the OCR parse service HTTP API.
type Client struct {
	baseURL      string
	apiKey       string
	modelVersion string
	httpClient   *http.Client
}

func NewClient(baseURL, apiKey, modelVersion string) *Client {
	if modelVersion == "" {
		modelVersion = "vlm"
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		modelVersion: modelVersion,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// File is one upload in a batch. DataID is the caller's correlation key and
// comes back on the matching Result.
type File struct {
	Name    string
	DataID  string
	Content []byte
}

// Result is the terminal state of one file in a batch.
type Result struct {
	DataID   string `json:"data_id"`
	FileName string `json:"file_name"`
	State    string `json:"state"`
	ErrMsg   string `json:"err_msg"`
	ZipURL   string `json:"full_zip_url"`
}

// SubmitBatch requests upload URLs for the files and PUTs each file's
// content. It returns the batch ID for polling.
func (c *Client) SubmitBatch(ctx context.Context, files []File) (string, error) {
	if len(files) == 0 {
		return "", errors.New("empty batch")
	}
	if len(files) > MaxBatchSize {
		return "", fmt.Errorf("batch size %d exceeds limit %d", len(files), MaxBatchSize)
	}
	for _, f := range files {
		if len(f.Content) > MaxFileSize {
			return "", fmt.Errorf("file %s too large: %d bytes", f.Name, len(f.Content))
		}
	}

	entries := make([]map[string]string, len(files))
	for i, f := range files {
		entries[i] = map[string]string{"name": f.Name, "data_id": f.DataID}
	}
	body, err := json.Marshal(map[string]any{
		"files":         entries,
		"model_version": c.modelVersion,
	})
	if err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file-urls/batch", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request upload urls: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("request upload urls: status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			BatchID  string   `json:"batch_id"`
			FileURLs []string `json:"file_urls"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload urls: %w", err)
	}
	if result.Code != 0 {
		return "", fmt.Errorf("request upload urls: code %d: %s", result.Code, result.Msg)
	}
	if len(result.Data.FileURLs) != len(files) {
		return "", fmt.Errorf("got %d upload urls for %d files", len(result.Data.FileURLs), len(files))
	}

	for i, u := range result.Data.FileURLs {
		if err := c.uploadFile(ctx, u, files[i].Content); err != nil {
			return "", fmt.Errorf("upload %s: %w", files[i].Name, err)
		}
	}
	return result.Data.BatchID, nil
}

func (c *Client) uploadFile(ctx context.Context, url string, content []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(content))
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// BatchResults fetches the current state of every file in the batch.
func (c *Client) BatchResults(ctx context.Context, batchID string) ([]Result, error) {
	u := c.baseURL + "/extract-results/batch/" + batchID
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("batch results: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("batch results %s: status %d: %s", batchID, resp.StatusCode, string(respBody))
	}

	var result struct {
		Data struct {
			ExtractResult []Result `json:"extract_result"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode batch results: %w", err)
	}
	return result.Data.ExtractResult, nil
}

// WaitForBatch polls until every file in the batch is done or failed, or
// the context ends.
func (c *Client) WaitForBatch(ctx context.Context, batchID string, pollInterval time.Duration) ([]Result, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		results, err := c.BatchResults(ctx, batchID)
		if err == nil && len(results) > 0 && allTerminal(results) {
			return results, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func allTerminal(results []Result) bool {
	for _, r := range results {
		if r.State != "done" && r.State != "failed" {
			return false
		}
	}
	return true
}

// FetchMarkdown downloads a done result's zip archive and returns the
// markdown file inside it.
func (c *Client) FetchMarkdown(ctx context.Context, res Result) (string, error) {
	if res.State == "failed" {
		return "", fmt.Errorf("parse failed for %s: %s", res.FileName, res.ErrMsg)
	}
	if res.ZipURL == "" {
		return "", fmt.Errorf("no zip url for %s", res.FileName)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, res.ZipURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("download zip: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download zip: status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read zip: %w", err)
	}
	return markdownFromZip(content)
}

func markdownFromZip(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".md") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		md, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		return string(md), nil
	}
	return "", errors.New("no markdown file in zip")
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

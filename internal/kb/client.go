package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client communicates with the knowledge base HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Dataset is one knowledge base from GET /datasets.
type Dataset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProcessRule controls how the knowledge base segments an uploaded
// document. The separator is our split marker, so the service indexes
// exactly the segments we produced.
type ProcessRule struct {
	Separator string
	MaxTokens int
}

// Document is one entry from GET /datasets/{id}/documents.
type Document struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IndexingStatus string `json:"indexing_status"`
	WordCount      int    `json:"word_count"`
}

// IndexingStatus is one entry from the indexing-status endpoint.
type IndexingStatus struct {
	ID            string `json:"id"`
	Status        string `json:"indexing_status"`
	TotalSegments int    `json:"total_segments"`
	Error         string `json:"error"`
}

// ResolveDataset finds the dataset with the given name. It never creates
// one; the dataset must exist before ingestion runs.
func (c *Client) ResolveDataset(ctx context.Context, name string) (string, error) {
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/datasets?page=%d&limit=100", c.baseURL, page)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return "", fmt.Errorf("list datasets: %w", err)
		}
		var body struct {
			Data    []Dataset `json:"data"`
			HasMore bool      `json:"has_more"`
		}
		err = decodeResponse(resp, &body)
		if err != nil {
			return "", fmt.Errorf("list datasets: %w", err)
		}

		for _, ds := range body.Data {
			if ds.Name == name {
				return ds.ID, nil
			}
		}
		if !body.HasMore {
			return "", fmt.Errorf("dataset %q not found", name)
		}
	}
}

// CreateDocumentByText uploads a markdown document by text and returns the
// indexing batch ID.
func (c *Client) CreateDocumentByText(ctx context.Context, datasetID, docName, text string, rule ProcessRule) (string, error) {
	payload := map[string]any{
		"name":               docName,
		"text":               text,
		"indexing_technique": "high_quality",
		"process_rule": map[string]any{
			"mode": "custom",
			"rules": map[string]any{
				"pre_processing_rules": []map[string]any{
					{"id": "remove_extra_spaces", "enabled": true},
					{"id": "remove_urls_emails", "enabled": false},
				},
				"segmentation": map[string]any{
					"separator":     rule.Separator,
					"max_tokens":    rule.MaxTokens,
					"chunk_overlap": 0,
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	u := fmt.Sprintf("%s/datasets/%s/document/create-by-text", c.baseURL, datasetID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	var result struct {
		Batch string `json:"batch"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return "", fmt.Errorf("create document %s: %w", docName, err)
	}
	if result.Batch == "" {
		return "", fmt.Errorf("create document %s: no batch in response", docName)
	}
	return result.Batch, nil
}

// BatchStatus reports the indexing state of every document in a batch.
func (c *Client) BatchStatus(ctx context.Context, datasetID, batch string) ([]IndexingStatus, error) {
	u := fmt.Sprintf("%s/datasets/%s/documents/%s/indexing-status", c.baseURL, datasetID, batch)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("indexing status: %w", err)
	}
	var result struct {
		Data []IndexingStatus `json:"data"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("indexing status batch %s: %w", batch, err)
	}
	return result.Data, nil
}

// ErrIndexingFailed is returned by WaitForIndexing when the knowledge base
// reports an error status, or completes a document with zero segments.
var ErrIndexingFailed = errors.New("indexing failed")

// WaitForIndexing polls the batch until all its documents complete, any of
// them errors, or the context ends.
func (c *Client) WaitForIndexing(ctx context.Context, datasetID, batch string, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		docs, err := c.BatchStatus(ctx, datasetID, batch)
		if err == nil && len(docs) > 0 {
			done := true
			segments := 0
			for _, d := range docs {
				if d.Status == "error" {
					return fmt.Errorf("%w: batch %s: %s", ErrIndexingFailed, batch, d.Error)
				}
				if d.Status != "completed" {
					done = false
					break
				}
				segments += d.TotalSegments
			}
			if done {
				// Completed with no segments means the separator never
				// matched and the upload is useless.
				if segments == 0 {
					return fmt.Errorf("%w: batch %s: completed with 0 segments", ErrIndexingFailed, batch)
				}
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ListDocuments pages through the documents of a dataset.
func (c *Client) ListDocuments(ctx context.Context, datasetID string, page, limit int) ([]Document, bool, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("limit", fmt.Sprintf("%d", limit))
	u := fmt.Sprintf("%s/datasets/%s/documents?%s", c.baseURL, datasetID, q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, false, fmt.Errorf("list documents: %w", err)
	}
	var result struct {
		Data    []Document `json:"data"`
		HasMore bool       `json:"has_more"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return nil, false, fmt.Errorf("list documents: %w", err)
	}
	return result.Data, result.HasMore, nil
}

// DeleteDocument removes a document from the dataset.
func (c *Client) DeleteDocument(ctx context.Context, datasetID, documentID string) error {
	u := fmt.Sprintf("%s/datasets/%s/documents/%s", c.baseURL, datasetID, documentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete document %s: status %d: %s", documentID, resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// decodeResponse checks the status code and decodes the JSON body into v.
// It always closes the body.
func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is a non-2xx response from the knowledge base API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the failure is worth retrying. Rate limits and
// server-side errors are transient; 4xx responses are not.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

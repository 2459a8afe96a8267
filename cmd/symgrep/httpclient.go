package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/termfx/symgrep/internal/core"
)

// httpBackend delegates search/index/symbol-attribute operations to a
// remote symgrep HTTP server instead of running them locally.
type httpBackend struct {
	baseURL string
	client  *http.Client
}

func newHTTPBackend(baseURL string) *httpBackend {
	return &httpBackend{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{}}
}

func (b *httpBackend) search(ctx context.Context, cfg core.SearchConfig) (core.SearchResult, error) {
	var result core.SearchResult
	err := b.postJSON(ctx, "/v1/search", cfg, &result)
	return result, err
}

func (b *httpBackend) index(ctx context.Context, cfg core.IndexConfig) (core.IndexSummary, error) {
	var summary core.IndexSummary
	err := b.postJSON(ctx, "/v1/index", cfg, &summary)
	return summary, err
}

func (b *httpBackend) indexInfo(ctx context.Context, cfg core.IndexConfig) (core.IndexSummary, error) {
	var summary core.IndexSummary
	err := b.postJSON(ctx, "/v1/index/info", cfg, &summary)
	return summary, err
}

func (b *httpBackend) symbolAttributes(ctx context.Context, req core.SymbolAttributesRequest) (core.SymbolAttributesResponse, error) {
	var resp core.SymbolAttributesResponse
	err := b.postJSON(ctx, "/v1/symbol/attributes", req, &resp)
	return resp, err
}

func (b *httpBackend) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return core.TransportErr("contacting symgrep server at %s: %v", b.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.IOErr("reading symgrep server response", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if jsonErr := json.Unmarshal(data, &apiErr); jsonErr == nil && apiErr.Error != "" {
			return fmt.Errorf("symgrep server: %s", apiErr.Error)
		}
		return fmt.Errorf("symgrep server returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}

// Package httpclient is the thin transport layer: it issues one HTTP request
// given method, URL, headers and body, and hands response bytes back without
// interpreting them. Framing and normalization belong to the protocol layer.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPClient is the Do-only surface of *http.Client, kept narrow for tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SendRequest sends body and returns the raw success payload. Non-2xx
// statuses come back as *UpstreamError carrying the status and body.
func SendRequest(ctx context.Context, client HTTPClient, method, url string, headers map[string]string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			URL:        url,
		}
	}

	return respBody, nil
}

// SendJSON sends body and decodes the success payload into response.
func SendJSON(ctx context.Context, client HTTPClient, method, url string, headers map[string]string, body []byte, response interface{}) error {
	respBody, err := SendRequest(ctx, client, method, url, headers, body)
	if err != nil {
		return err
	}
	if response == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ChunkProcessor receives each raw chunk exactly as it arrived from the
// network. Chunk boundaries are arbitrary; callers buffer across them.
type ChunkProcessor func(chunk []byte) error

// StreamRequest sends body and feeds the response to processChunk until the
// connection closes, the context is cancelled, or the processor returns an
// error. Non-2xx statuses come back as *UpstreamError before any chunk is
// delivered.
func StreamRequest(ctx context.Context, client HTTPClient, method, url string, headers map[string]string, body []byte, processChunk ChunkProcessor) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			URL:        url,
		}
	}

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if err := processChunk(buf[:n]); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream read failed: %w", readErr)
		}
	}
}

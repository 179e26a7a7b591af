package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-ai/arclight/internal/httpclient"
)

func TestSendRequest_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	body, err := httpclient.SendRequest(context.Background(), ts.Client(), http.MethodPost, ts.URL,
		map[string]string{"Content-Type": "application/json"}, []byte(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestSendRequest_NonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream sad"))
	}))
	defer ts.Close()

	_, err := httpclient.SendRequest(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil)
	require.Error(t, err)

	var upstream *httpclient.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Equal(t, "upstream sad", string(upstream.Body))
	assert.Equal(t, ts.URL, upstream.URL)
}

func TestStreamRequest_DeliversChunksUntilEOF(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		flusher := w.(http.Flusher)
		for _, part := range []string{"one", "two", "three"} {
			_, _ = w.Write([]byte(part))
			flusher.Flush()
		}
	}))
	defer ts.Close()

	var got []byte
	err := httpclient.StreamRequest(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil,
		func(chunk []byte) error {
			got = append(got, chunk...)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, "onetwothree", string(got))
}

func TestStreamRequest_ErrorStatusBeforeChunks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer ts.Close()

	called := false
	err := httpclient.StreamRequest(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil,
		func(chunk []byte) error {
			called = true
			return nil
		})
	require.Error(t, err)
	assert.False(t, called, "processor must not run for a failed stream")

	var upstream *httpclient.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
}

func TestStreamRequest_ProcessorErrorStopsStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer ts.Close()

	sentinel := errors.New("stop now")
	err := httpclient.StreamRequest(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil,
		func(chunk []byte) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

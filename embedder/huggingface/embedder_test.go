package huggingface

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/brainvault/embedder"
)

func TestEmbed_RequestShape(t *testing.T) {
	var got featureExtractionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`[0.1, 0.2, 0.3]`))
	}))
	defer srv.Close()

	e := NewEmbedder(
		embedder.WithApiKey("hf-token"),
		embedder.WithLocation(srv.URL),
	)

	vec, err := e.Embed(t.Context(), "Gym. Monday legs")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Gym. Monday legs", got.Inputs)
	assert.True(t, got.Options.WaitForModel)
}

func TestEmbed_ResponseShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []float32
		wantErr bool
	}{
		{name: "flat", body: `[1, 2]`, want: []float32{1, 2}},
		{name: "nested", body: `[[1, 2]]`, want: []float32{1, 2}},
		{name: "empty", body: `[]`, wantErr: true},
		{name: "empty nested", body: `[[]]`, wantErr: true},
		{name: "object", body: `{"error": "loading"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			vec, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(t.Context(), "text")
			if tt.wantErr {
				require.ErrorIs(t, err, embedder.ErrEmbedding)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, vec)
		})
	}
}

func TestEmbed_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(t.Context(), "text")

	require.ErrorIs(t, err, embedder.ErrEmbedding)
	assert.Contains(t, err.Error(), "503")
}

func TestEmbed_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
		w.Write([]byte(`[0.1, 0.2]`))
	}))
	defer srv.Close()

	e := NewEmbedder(
		embedder.WithLocation(srv.URL),
		embedder.WithTimeout(50*time.Millisecond),
	)

	_, err := e.Embed(t.Context(), "text")

	require.ErrorIs(t, err, embedder.ErrEmbedding)
	assert.Contains(t, err.Error(), "Timeout")
}

func TestNewEmbedder_DefaultsToModelEndpoint(t *testing.T) {
	e := NewEmbedder().(*huggingFaceEmbedder)

	assert.Equal(t, defaultLocation+defaultModel, e.url)
}

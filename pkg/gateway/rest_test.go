package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
)

func testGateway(t *testing.T, handler http.Handler) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(nil, Options{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  time.Second,
	})
}

func TestGenerateImage(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png bytes"))

	var gotReq predictRequest
	g := testGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/imagen-4.0-generate-001:predict", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprintf(w, `{"predictions":[{"bytesBase64Encoded":%q,"mimeType":"image/png"}]}`, payload)
	}))

	out, err := g.GenerateImage(context.Background(), "sunset over mountains", AspectLandscape)
	require.NoError(t, err)
	assert.Equal(t, payload, out.Data)
	assert.Equal(t, "image/png", out.MediaType)

	require.Len(t, gotReq.Instances, 1)
	assert.Equal(t, "sunset over mountains", gotReq.Instances[0].Prompt)
	assert.Equal(t, "16:9", gotReq.Parameters.AspectRatio)
	assert.Equal(t, "image/png", gotReq.Parameters.OutputMIMEType)
	assert.Equal(t, 1, gotReq.Parameters.SampleCount)
}

func TestGenerateImageEmptyResult(t *testing.T) {
	g := testGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"predictions":[]}`)
	}))

	_, err := g.GenerateImage(context.Background(), "anything", AspectSquare)
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateImageInvalidRatioDefaultsToSquare(t *testing.T) {
	g := testGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1:1", req.Parameters.AspectRatio)
		fmt.Fprint(w, `{"predictions":[{"bytesBase64Encoded":"eA==","mimeType":"image/png"}]}`)
	}))

	_, err := g.GenerateImage(context.Background(), "x", AspectRatio("4:3"))
	require.NoError(t, err)
}

func TestGenerateVideoPollsUntilDone(t *testing.T) {
	const opName = "models/veo-3.0-generate-preview/operations/abc123"

	var polls int
	g := testGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			assert.Equal(t, "/models/veo-3.0-generate-preview:predictLongRunning", r.URL.Path)
			var req predictRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Instances, 1)
			require.NotNil(t, req.Instances[0].Image)
			assert.Equal(t, "image/jpeg", req.Instances[0].Image.MIMEType)
			fmt.Fprintf(w, `{"name":%q}`, opName)
		default:
			assert.Equal(t, "/"+opName, r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			polls++
			if polls < 3 {
				fmt.Fprintf(w, `{"name":%q,"done":false}`, opName)
				return
			}
			fmt.Fprintf(w, `{"name":%q,"done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"https://example.com/v.mp4?alt=media"}}]}}}`, opName)
		}
	}))

	ref := assets.FromBytes([]byte("jpeg bytes"), "image/jpeg")
	uri, err := g.GenerateVideo(context.Background(), "a storm over the sea", &ref)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v.mp4?alt=media&key=test-key", uri)
	assert.Equal(t, 3, polls)
}

func TestGenerateVideoDoneWithoutLocator(t *testing.T) {
	g := testGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"name":"operations/empty"}`)
			return
		}
		fmt.Fprint(w, `{"name":"operations/empty","done":true,"response":{"generateVideoResponse":{"generatedSamples":[]}}}`)
	}))

	_, err := g.GenerateVideo(context.Background(), "anything", nil)
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateVideoOperationError(t *testing.T) {
	g := testGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"name":"operations/boom"}`)
			return
		}
		fmt.Fprint(w, `{"name":"operations/boom","done":true,"error":{"code":13,"message":"internal failure"}}`)
	}))

	_, err := g.GenerateVideo(context.Background(), "anything", nil)
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "internal failure")
}

func TestGenerateVideoContextCancelled(t *testing.T) {
	g := testGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"name":"operations/slow"}`)
			return
		}
		fmt.Fprint(w, `{"name":"operations/slow","done":false}`)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := g.GenerateVideo(ctx, "anything", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPredictAPIError(t *testing.T) {
	g := testGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"quota exceeded"}}`)
	}))

	_, err := g.GenerateImage(context.Background(), "x", AspectSquare)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

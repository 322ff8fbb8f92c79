package arxivmcp

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func newClient(t *testing.T, timeout time.Duration) Client {
	t.Helper()
	c, err := New(logger.Nop(), Config{URL: "https://arxiv-mcp.example.com/search", Token: "tok", Timeout: timeout})
	require.NoError(t, err)
	return c
}

func TestSearch(t *testing.T) {
	setupHTTPMock(t)

	httpmock.RegisterResponder("GET", "https://arxiv-mcp.example.com/search",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
			assert.Equal(t, "deep learning", req.URL.Query().Get("query"))
			assert.Equal(t, "1", req.URL.Query().Get("max_results"))
			return httpmock.NewStringResponse(http.StatusOK, `{"papers":[{"title":"x"}]}`), nil
		})

	res, err := newClient(t, time.Second).Search(context.Background(), "deep learning", 1)
	require.NoError(t, err)
	assert.Equal(t, 200, res.Status)
	assert.Equal(t, "OK", res.StatusText)
	assert.True(t, res.OK)
	assert.Equal(t, map[string]any{"papers": []any{map[string]any{"title": "x"}}}, res.Body)
}

func TestSearchNonSuccessStatusIsAResult(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://arxiv-mcp.example.com/search",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":"bad token"}`))

	res, err := newClient(t, time.Second).Search(context.Background(), "deep learning", 1)
	require.NoError(t, err)
	assert.Equal(t, 401, res.Status)
	assert.Equal(t, "Unauthorized", res.StatusText)
	assert.False(t, res.OK)
}

func TestSearchNonJSONIsAnError(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://arxiv-mcp.example.com/search",
		httpmock.NewStringResponder(http.StatusOK, `<html>hi</html>`))

	_, err := newClient(t, time.Second).Search(context.Background(), "deep learning", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-JSON")
}

func TestSearchTimeout(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "https://arxiv-mcp.example.com/search",
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	start := time.Now()
	_, err := newClient(t, 50*time.Millisecond).Search(context.Background(), "deep learning", 1)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewRequiresURLAndToken(t *testing.T) {
	_, err := New(logger.Nop(), Config{URL: "https://x"})
	require.ErrorIs(t, err, ErrMissingConfig)
	_, err = New(logger.Nop(), Config{Token: "tok"})
	require.ErrorIs(t, err, ErrMissingConfig)
}

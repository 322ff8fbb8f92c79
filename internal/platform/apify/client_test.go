package apify

import (
	"context"
	"errors"
	"net/http"
	"testing"

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

func TestMe(t *testing.T) {
	setupHTTPMock(t)

	httpmock.RegisterResponder("GET", "https://api.apify.com/v2/users/me",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"data":{"id":"u1","username":"demo","email":"demo@example.com"}}`), nil
		})

	c, err := New(logger.Nop(), Config{Token: "tok"})
	require.NoError(t, err)

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "demo", u.Username)
	assert.Equal(t, "demo@example.com", u.Email)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestMeUnauthorized(t *testing.T) {
	setupHTTPMock(t)

	httpmock.RegisterResponder("GET", "https://api.apify.com/v2/users/me",
		httpmock.NewStringResponder(http.StatusUnauthorized,
			`{"error":{"type":"token-not-valid","message":"Authentication token is not valid."}}`))

	c, err := New(logger.Nop(), Config{Token: "bad", MaxRetries: 3})
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	require.Error(t, err)

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusUnauthorized, he.StatusCode)
	assert.Equal(t, "token-not-valid", he.Type)
	assert.Contains(t, err.Error(), "Authentication token is not valid.")
	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "401 must not be retried")
}

func TestMeCustomBaseURL(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", "http://apify.local/v2/users/me",
		httpmock.NewStringResponder(http.StatusOK, `{"data":{"username":"x"}}`))

	c, err := New(logger.Nop(), Config{Token: "tok", BaseURL: "http://apify.local/"})
	require.NoError(t, err)
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", u.Username)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(logger.Nop(), Config{Token: "  "})
	require.ErrorIs(t, err, ErrMissingToken)
}

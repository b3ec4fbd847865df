package eta

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etasync/internal/config"
)

const (
	testIDHost  = "https://id.eta.test"
	testAPIHost = "https://api.eta.test"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	gock.InterceptClient(hc)
	t.Cleanup(func() {
		gock.RestoreClient(hc)
		gock.Off()
	})

	c, err := New(config.ETAConfig{
		AuthURL:      testIDHost + "/connect/token",
		APIURL:       testAPIHost + "/api/v1/",
		ClientID:     "eta-client",
		ClientSecret: "s3cret",
	}, WithHTTPClient(hc))
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(config.ETAConfig{APIURL: "https://api"})
	assert.Error(t, err)

	_, err = New(config.ETAConfig{AuthURL: "https://id", APIURL: "https://api"})
	assert.Error(t, err)

	c, err := New(config.ETAConfig{AuthURL: "https://id", APIURL: "https://api/", ClientID: "a", ClientSecret: "b"})
	require.NoError(t, err)
	assert.Equal(t, "https://api", c.apiURL)
	assert.Equal(t, "InvoicingAPI", c.scope)
}

func TestClient_Token(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t)
		gock.New(testIDHost).
			Post("/connect/token").
			MatchType("url").
			BodyString("client_id=eta-client&client_secret=s3cret&grant_type=client_credentials&scope=InvoicingAPI").
			Reply(http.StatusOK).
			JSON(map[string]any{"access_token": "tok-123", "token_type": "Bearer", "expires_in": 3600})

		tok, err := c.Token(ctx)

		require.NoError(t, err)
		assert.Equal(t, "tok-123", tok)
		assert.True(t, gock.IsDone())
	})

	t.Run("rejected", func(t *testing.T) {
		c := newTestClient(t)
		gock.New(testIDHost).
			Post("/connect/token").
			Reply(http.StatusUnauthorized).
			BodyString("invalid_client")

		tok, err := c.Token(ctx)

		assert.Empty(t, tok)
		assert.ErrorIs(t, err, ErrAuthentication)
		var authErr *AuthenticationError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		assert.Contains(t, err.Error(), "invalid_client")
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t)
		gock.New(testIDHost).
			Post("/connect/token").
			Reply(http.StatusOK).
			BodyString("<html>maintenance</html>")

		_, err := c.Token(ctx)

		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("missing access token", func(t *testing.T) {
		c := newTestClient(t)
		gock.New(testIDHost).
			Post("/connect/token").
			Reply(http.StatusOK).
			JSON(map[string]any{"token_type": "Bearer"})

		_, err := c.Token(ctx)

		assert.ErrorIs(t, err, ErrAuthentication)
		assert.Contains(t, err.Error(), "access_token")
	})

	t.Run("cancelled context is not an authentication failure", func(t *testing.T) {
		c := newTestClient(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.Token(cctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrAuthentication)
	})
}

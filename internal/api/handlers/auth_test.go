package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/harukisan/fixed-points-backend/internal/api/handlers"
	"github.com/harukisan/fixed-points-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body interface{}, token string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, url, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestAuthEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	register := map[string]string{
		"username": "endpointuser",
		"email":    "endpoint@example.com",
		"password": "password123",
	}

	t.Run("register", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/register"), register, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var user handlers.UserResponse
		decode(t, resp, &user)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "endpointuser", user.Username)
		assert.Equal(t, "email", user.AuthProvider)
	})

	t.Run("register duplicate", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/register"), register, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("register invalid payload", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/register"), map[string]string{
			"username": "x",
			"email":    "bad",
			"password": "short",
		}, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	var tokens handlers.TokenResponse

	t.Run("login", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/login"), map[string]string{
			"email":    register["email"],
			"password": register["password"],
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		decode(t, resp, &tokens)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, "bearer", tokens.TokenType)
	})

	t.Run("login wrong password", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/login"), map[string]string{
			"email":    register["email"],
			"password": "wrongpassword",
		}, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("me", func(t *testing.T) {
		resp := getJSON(t, ts.APIURL("/auth/me"), tokens.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user handlers.UserResponse
		decode(t, resp, &user)
		assert.Equal(t, "endpointuser", user.Username)
	})

	t.Run("me without token", func(t *testing.T) {
		resp := getJSON(t, ts.APIURL("/auth/me"), "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("me with refresh token is rejected", func(t *testing.T) {
		resp := getJSON(t, ts.APIURL("/auth/me"), tokens.RefreshToken)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/refresh"), map[string]string{
			"refresh_token": tokens.RefreshToken,
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rotated handlers.TokenResponse
		decode(t, resp, &rotated)
		assert.NotEmpty(t, rotated.AccessToken)

		// The consumed refresh token no longer works.
		resp = postJSON(t, ts.APIURL("/auth/refresh"), map[string]string{
			"refresh_token": tokens.RefreshToken,
		}, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		tokens = rotated
	})

	t.Run("logout", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/logout"), nil, tokens.AccessToken)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// Refresh tokens are revoked by logout.
		refreshResp := postJSON(t, ts.APIURL("/auth/refresh"), map[string]string{
			"refresh_token": tokens.RefreshToken,
		}, "")
		defer refreshResp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, refreshResp.StatusCode)
	})

	t.Run("discord login unconfigured", func(t *testing.T) {
		resp := getJSON(t, ts.APIURL("/auth/discord/login"), "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	})
}

func TestFixedPointEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	// Register and log in over the API.
	resp := postJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"username": "lineupauthor",
		"email":    "author@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var tokens handlers.TokenResponse
	loginResp := postJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"email":    "author@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	decode(t, loginResp, &tokens)

	create := map[string]interface{}{
		"title":       "Brimstone smoke A site",
		"characterId": "brimstone",
		"mapId":       "haven",
		"steps": []map[string]interface{}{
			{"stepOrder": 1, "description": "Open the map", "positionX": 0.3, "positionY": 0.7},
		},
	}

	t.Run("create requires auth", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/fixed-points/"), create, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var createdID uint

	t.Run("create", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/fixed-points/"), create, tokens.AccessToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created struct {
			ID uint `json:"id"`
		}
		decode(t, resp, &created)
		require.NotZero(t, created.ID)
		createdID = created.ID
	})

	t.Run("anonymous list", func(t *testing.T) {
		resp := getJSON(t, ts.APIURL("/fixed-points/"), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var items []struct {
			ID          uint   `json:"id"`
			Title       string `json:"title"`
			Username    string `json:"username"`
			IsFavorited bool   `json:"isFavorited"`
		}
		decode(t, resp, &items)
		require.Len(t, items, 1)
		assert.Equal(t, createdID, items[0].ID)
		assert.Equal(t, "lineupauthor", items[0].Username)
	})

	t.Run("favorite and list favorites", func(t *testing.T) {
		favResp := postJSON(t, ts.APIURL("/fixed-points/"+itoa(createdID)+"/favorite"), nil, tokens.AccessToken)
		defer favResp.Body.Close()
		require.Equal(t, http.StatusCreated, favResp.StatusCode)

		listResp := getJSON(t, ts.APIURL("/favorites"), tokens.AccessToken)
		require.Equal(t, http.StatusOK, listResp.StatusCode)
		var favs []struct {
			ID uint `json:"id"`
		}
		decode(t, listResp, &favs)
		require.Len(t, favs, 1)
		assert.Equal(t, createdID, favs[0].ID)
	})
}

func itoa(v uint) string {
	return fmt.Sprintf("%d", v)
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonepengu/backend/internal/testutil"
)

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	return resp
}

func TestLoginEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)
	loginURL := ts.Server.URL + "/api/auth/login"

	t.Run("missing fields", func(t *testing.T) {
		resp := postJSON(t, loginURL, map[string]string{"email": "a@x.com"})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "required")
	})

	t.Run("invalid provider", func(t *testing.T) {
		resp := postJSON(t, loginURL, map[string]string{
			"email":         "a@x.com",
			"auth_provider": "myspace",
		})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Invalid auth provider")
	})

	t.Run("first login then repeat login", func(t *testing.T) {
		first := testutil.Login(t, ts, "a@x.com")
		assert.True(t, first.Success)
		assert.True(t, first.IsNewUser)
		assert.NotEmpty(t, first.UserID)
		assert.NotEmpty(t, first.AccessToken)
		assert.NotEmpty(t, first.RefreshToken)
		assert.NotEmpty(t, first.ExpiresAt)
		assert.Equal(t, "a@x.com", first.User.Email)

		second := testutil.Login(t, ts, "a@x.com")
		assert.False(t, second.IsNewUser)
		assert.Equal(t, first.UserID, second.UserID)
	})
}

func TestValidateEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)

	type validateResponse struct {
		Valid bool `json:"valid"`
		User  *struct {
			ID    string  `json:"id"`
			Email string  `json:"email"`
			Name  *string `json:"name"`
		} `json:"user"`
	}

	t.Run("no token", func(t *testing.T) {
		resp := testutil.AuthedRequest(t, ts, http.MethodGet, "/api/auth/validate", "", nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)

		var body struct {
			Code string `json:"code"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "NO_TOKEN", body.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		resp := testutil.AuthedRequest(t, ts, http.MethodGet, "/api/auth/validate", "garbage", nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)

		var body struct {
			Code string `json:"code"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "INVALID_TOKEN", body.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		login := testutil.Login(t, ts, "val@x.com")

		resp := testutil.AuthedRequest(t, ts, http.MethodGet, "/api/auth/validate", login.AccessToken, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body validateResponse
		testutil.AssertJSONResponse(t, resp, &body)
		assert.True(t, body.Valid)
		require.NotNil(t, body.User)
		assert.Equal(t, "val@x.com", body.User.Email)
	})

	t.Run("after logout", func(t *testing.T) {
		login := testutil.Login(t, ts, "val2@x.com")

		logoutResp := testutil.AuthedRequest(t, ts, http.MethodPost, "/api/auth/logout", login.AccessToken, nil)
		logoutResp.Body.Close()
		testutil.AssertStatusCode(t, logoutResp, http.StatusOK)

		resp := testutil.AuthedRequest(t, ts, http.MethodGet, "/api/auth/validate", login.AccessToken, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body validateResponse
		testutil.AssertJSONResponse(t, resp, &body)
		assert.False(t, body.Valid)
		assert.Nil(t, body.User)
	})
}

func TestLogoutEndpoint_Idempotent(t *testing.T) {
	ts := testutil.NewTestServer(t)
	login := testutil.Login(t, ts, "bye@x.com")

	for i := 0; i < 2; i++ {
		resp := testutil.AuthedRequest(t, ts, http.MethodPost, "/api/auth/logout", login.AccessToken, nil)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		resp.Body.Close()
		assert.True(t, body.Success)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)
	refreshURL := ts.Server.URL + "/api/auth/refresh"

	t.Run("missing token", func(t *testing.T) {
		resp := postJSON(t, refreshURL, map[string]string{})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Refresh token is required")
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := postJSON(t, refreshURL, map[string]string{"refresh_token": "garbage"})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid refresh token")
	})

	t.Run("access token in place of refresh token", func(t *testing.T) {
		login := testutil.Login(t, ts, "ref@x.com")

		resp := postJSON(t, refreshURL, map[string]string{"refresh_token": login.AccessToken})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid token type")
	})

	t.Run("successful rotation invalidates old access token", func(t *testing.T) {
		login := testutil.Login(t, ts, "ref2@x.com")

		resp := postJSON(t, refreshURL, map[string]string{"refresh_token": login.RefreshToken})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body struct {
			Success     bool   `json:"success"`
			AccessToken string `json:"access_token"`
			ExpiresAt   string `json:"expires_at"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.True(t, body.Success)
		assert.NotEmpty(t, body.ExpiresAt)
		assert.NotEqual(t, login.AccessToken, body.AccessToken)

		// Old literal no longer matches a session row.
		stale := testutil.AuthedRequest(t, ts, http.MethodGet, "/api/auth/validate", login.AccessToken, nil)
		defer stale.Body.Close()
		var staleBody struct {
			Valid bool `json:"valid"`
		}
		testutil.AssertJSONResponse(t, stale, &staleBody)
		assert.False(t, staleBody.Valid)

		fresh := testutil.AuthedRequest(t, ts, http.MethodGet, "/api/auth/validate", body.AccessToken, nil)
		defer fresh.Body.Close()
		var freshBody struct {
			Valid bool `json:"valid"`
		}
		testutil.AssertJSONResponse(t, fresh, &freshBody)
		assert.True(t, freshBody.Valid)
	})

	t.Run("refresh after logout", func(t *testing.T) {
		login := testutil.Login(t, ts, "ref3@x.com")

		logout := testutil.AuthedRequest(t, ts, http.MethodPost, "/api/auth/logout", login.AccessToken, nil)
		logout.Body.Close()

		resp := postJSON(t, refreshURL, map[string]string{"refresh_token": login.RefreshToken})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Session not found")
	})
}

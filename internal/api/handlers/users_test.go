package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayria/accounts-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]string{
				"first_name": "Alice",
				"last_name":  "Smith",
				"email":      "alice@example.com",
				"password":   "secret1",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result struct {
					ID        int64  `json:"id"`
					FirstName string `json:"first_name"`
					Email     string `json:"email"`
					IsActive  bool   `json:"is_active"`
				}
				testutil.AssertJSONResponse(t, resp, &result)
				assert.NotZero(t, result.ID)
				assert.Equal(t, "Alice", result.FirstName)
				assert.Equal(t, "alice@example.com", result.Email)
				assert.True(t, result.IsActive)
			},
		},
		{
			name: "missing email",
			request: map[string]string{
				"first_name": "Alice",
				"last_name":  "Smith",
				"password":   "secret1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			request: map[string]string{
				"first_name": "Alice",
				"last_name":  "Smith",
				"email":      "alice@example.com",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"first_name": "Alice",
				"last_name":  "Smith",
				"email":      "taken@example.com",
				"password":   "secret1",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.URL("/users"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, ts.DB.DB)

	tests := []struct {
		name            string
		request         map[string]string
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "successful login",
			request: map[string]string{
				"email":    user.Email,
				"password": rawPassword,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			request: map[string]string{
				"email":    user.Email,
				"password": "wrongpassword",
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid Login Credentials",
		},
		{
			name: "unknown email",
			request: map[string]string{
				"email":    "nobody@example.com",
				"password": "anypassword",
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid Login Credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.URL("/users/login"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			if tt.expectedMessage != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMessage)
				return
			}

			var result testutil.AuthResponse
			testutil.AssertJSONResponse(t, resp, &result)
			assert.Equal(t, user.ID, result.User.ID)
			assert.NotEmpty(t, result.AccessToken)
			assert.NotEmpty(t, result.RefreshToken)
		})
	}
}

func TestUserHandler_Token(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, login := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	t.Run("successful refresh", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"token": login.RefreshToken})
		resp, err := http.Post(ts.URL("/users/token"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		var result testutil.AuthResponse
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, login.RefreshToken, result.RefreshToken)
	})

	t.Run("unknown refresh token", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"token": "no-such-token"})
		resp, err := http.Post(ts.URL("/users/token"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Refresh token not found")
	})

	t.Run("missing token field", func(t *testing.T) {
		resp, err := http.Post(ts.URL("/users/token"), "application/json", bytes.NewBufferString("{}"))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})
}

func TestUserHandler_MeAndLogout(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := &http.Client{}

	user, login := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	// GET /users/me with the fresh access token
	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.URL("/users/me"), nil, login.AccessToken)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var me struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &me)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, user.Email, me.Email)

	// DELETE /users/logout
	req = testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.URL("/users/logout"), nil, login.AccessToken)
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var logout struct {
		Message string `json:"message"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &logout)
	assert.Equal(t, "User logged out successfully", logout.Message)

	// The access token is dead now: its refresh record was deactivated
	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.URL("/users/me"), nil, login.AccessToken)
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid Refresh Token")
}

func TestUserHandler_Me_NoAuthHeader(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.URL("/users/me"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid token")
}

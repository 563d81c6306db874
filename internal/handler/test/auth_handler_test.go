package test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"locallisting/internal/models"
	"locallisting/internal/repository"
	"locallisting/internal/service"
)

func TestRegisterHandler_Success(t *testing.T) {
	// Arrange
	env := createTestHandler()

	requestBody := map[string]interface{}{
		"email":     "test@example.com",
		"username":  "tester",
		"password":  "password123",
		"password2": "password123",
		"city":      "Leipzig",
	}

	env.auth.On("Register", anyCtx, repository.RegisterRequest{
		Email:     "test@example.com",
		Username:  "tester",
		Password:  "password123",
		Password2: "password123",
		City:      "Leipzig",
	}).Return(&models.User{
		UserID:   testUserID,
		Email:    "test@example.com",
		Username: "tester",
	}, &service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil)

	// Act
	rr := env.do(http.MethodPost, "/api/users/register", jsonBody(t, requestBody), "")

	// Assert
	assertJSONSuccess(t, rr, http.StatusCreated)
	assert.Contains(t, rr.Body.String(), `"accessToken":"access"`)
	assert.Contains(t, rr.Body.String(), `"username":"tester"`)
	assert.NotContains(t, rr.Body.String(), "password")
	env.auth.AssertExpectations(t)
}

func TestRegisterHandler_InvalidEmail(t *testing.T) {
	// Arrange
	env := createTestHandler()

	requestBody := map[string]interface{}{
		"email":     "invalid-email",
		"username":  "tester",
		"password":  "password123",
		"password2": "password123",
	}

	// Act
	rr := env.do(http.MethodPost, "/api/users/register", jsonBody(t, requestBody), "")

	// Assert
	fields := assertValidationFields(t, rr, "email")
	assert.Equal(t, "Enter a valid email address.", fields["email"])
	env.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegisterHandler_MissingFields(t *testing.T) {
	env := createTestHandler()

	rr := env.do(http.MethodPost, "/api/users/register", strings.NewReader(`{"email":"a@b.co"}`), "")

	assertValidationFields(t, rr, "username", "password", "password2")
}

func TestRegisterHandler_ServiceValidation(t *testing.T) {
	env := createTestHandler()
	env.auth.On("Register", anyCtx, mock.Anything).
		Return(nil, nil, service.NewValidationError("password", "Password fields didn't match."))

	rr := env.do(http.MethodPost, "/api/users/register", jsonBody(t, map[string]string{
		"email": "test@example.com", "username": "tester", "password": "password123", "password2": "password456",
	}), "")

	fields := assertValidationFields(t, rr, "password")
	assert.Equal(t, "Password fields didn't match.", fields["password"])
}

func TestRegisterHandler_InvalidJSON(t *testing.T) {
	env := createTestHandler()

	rr := env.do(http.MethodPost, "/api/users/register", strings.NewReader(`{"email":`), "")

	assertJSONError(t, rr, http.StatusBadRequest, "Invalid request body")
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	// Arrange
	env := createTestHandler()
	env.auth.On("Login", anyCtx, "test@example.com", "wrong").Return(nil, nil, service.ErrInvalidCredentials)

	// Act
	rr := env.do(http.MethodPost, "/api/users/login", jsonBody(t, map[string]string{
		"email": "test@example.com", "password": "wrong",
	}), "")

	// Assert
	assertJSONError(t, rr, http.StatusBadRequest, "Invalid Credentials")
}

func TestLoginHandler_Success(t *testing.T) {
	env := createTestHandler()
	env.auth.On("Login", anyCtx, "test@example.com", "password123").
		Return(&models.User{UserID: testUserID}, &service.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil)

	rr := env.do(http.MethodPost, "/api/users/login", jsonBody(t, map[string]string{
		"email": "test@example.com", "password": "password123",
	}), "")

	assertJSONSuccess(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), `"refreshToken":"r"`)
}

func TestRefreshTokenHandler_Invalid(t *testing.T) {
	env := createTestHandler()
	env.auth.On("RefreshTokens", anyCtx, "stale").Return(nil, nil, service.ErrInvalidToken)

	rr := env.do(http.MethodPost, "/api/users/token/refresh", strings.NewReader(`{"refreshToken":"stale"}`), "")

	assertJSONError(t, rr, http.StatusUnauthorized, "invalid or expired")
}

func TestLogoutHandler(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		env := createTestHandler()

		rr := env.do(http.MethodPost, "/api/users/logout", nil, "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		env.auth.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})

	t.Run("revokes refresh token", func(t *testing.T) {
		env := createTestHandler()
		env.auth.On("Logout", anyCtx, testUserID).Return(nil)

		rr := env.do(http.MethodPost, "/api/users/logout", nil, testUserID)

		assertJSONSuccess(t, rr, http.StatusOK)
		env.auth.AssertExpectations(t)
	})
}

func TestChangePasswordHandler_WrongPassword(t *testing.T) {
	env := createTestHandler()
	env.auth.On("ChangePassword", anyCtx, testUserID, "wrong", "newpassword1").
		Return(service.NewValidationError("oldPassword", "Wrong password."))

	rr := env.do(http.MethodPost, "/api/users/change-password", jsonBody(t, map[string]string{
		"oldPassword": "wrong", "newPassword": "newpassword1",
	}), testUserID)

	fields := assertValidationFields(t, rr, "oldPassword")
	assert.Equal(t, "Wrong password.", fields["oldPassword"])
}

func TestPasswordResetRequestHandler(t *testing.T) {
	env := createTestHandler()
	env.auth.On("RequestPasswordReset", anyCtx, "nobody@example.com").Return(nil)

	rr := env.do(http.MethodPost, "/api/users/password-reset-request", strings.NewReader(`{"email":"nobody@example.com"}`), "")

	assertJSONSuccess(t, rr, http.StatusOK)
}

func TestPasswordResetConfirmHandler(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", expectedStatus: http.StatusOK},
		{name: "unknown token", serviceErr: service.ErrInvalidToken, expectedStatus: http.StatusUnauthorized},
		{name: "storage failure", serviceErr: errors.New("db down"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := createTestHandler()
			env.auth.On("ConfirmPasswordReset", anyCtx, "token-1", "newpassword1").Return(tt.serviceErr)

			rr := env.do(http.MethodPost, "/api/users/password-reset-confirm", jsonBody(t, map[string]string{
				"token": "token-1", "newPassword": "newpassword1",
			}), "")

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

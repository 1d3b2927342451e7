package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/handler"
	"github.com/optikform/optik-api/internal/service"
	"github.com/optikform/optik-api/internal/utils"
)

type stubAuthService struct {
	signUpResp dto.UserResponse
	signUpErr  error
	signInResp dto.SignInResponse
	signInErr  error
}

func (s *stubAuthService) SignUp(ctx context.Context, req dto.SignUpRequest) (dto.UserResponse, error) {
	return s.signUpResp, s.signUpErr
}

func (s *stubAuthService) SignIn(ctx context.Context, req dto.SignInRequest) (dto.SignInResponse, error) {
	return s.signInResp, s.signInErr
}

func (s *stubAuthService) GetProfile(ctx context.Context, userID uint) (dto.UserResponse, error) {
	return dto.UserResponse{}, service.ErrUserNotFound
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (dto.UserResponse, error) {
	return dto.UserResponse{}, service.ErrUserNotFound
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	return service.ErrUserNotFound
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	h := handler.NewAuthHandler(svc, zerolog.Nop())
	h.RegisterPublic(app.Group("/auth"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (int, utils.APIResponse) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func TestAuthHandlerSignUp(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		app := newAuthApp(&stubAuthService{
			signUpResp: dto.UserResponse{ID: 11, Name: "Ayşe Demir", Email: "ayse@okul.test", Role: "teacher"},
		})

		status, envelope := postJSON(t, app, "/auth/signup", dto.SignUpRequest{
			Name:     "Ayşe Demir",
			Email:    "ayse@okul.test",
			Password: "parola-123",
			SchoolID: 1,
		})

		require.Equal(t, fiber.StatusCreated, status)
		require.True(t, envelope.Success)
		require.Equal(t, "account created", envelope.Message)
		require.NotNil(t, envelope.Data)
	})

	t.Run("taken email conflicts", func(t *testing.T) {
		app := newAuthApp(&stubAuthService{signUpErr: service.ErrEmailTaken})

		status, envelope := postJSON(t, app, "/auth/signup", dto.SignUpRequest{
			Name:     "Ayşe Demir",
			Email:    "ayse@okul.test",
			Password: "parola-123",
			SchoolID: 1,
		})

		require.Equal(t, fiber.StatusConflict, status)
		require.False(t, envelope.Success)
	})

	t.Run("unknown school", func(t *testing.T) {
		app := newAuthApp(&stubAuthService{signUpErr: service.ErrSchoolNotFound})

		status, _ := postJSON(t, app, "/auth/signup", dto.SignUpRequest{
			Name:     "Ayşe Demir",
			Email:    "ayse@okul.test",
			Password: "parola-123",
			SchoolID: 999,
		})

		require.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("malformed body", func(t *testing.T) {
		app := newAuthApp(&stubAuthService{})

		req := httptest.NewRequest("POST", "/auth/signup", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthHandlerSignIn(t *testing.T) {
	creds := dto.SignInRequest{Email: "ayse@okul.test", Password: "parola-123"}

	t.Run("returns token", func(t *testing.T) {
		app := newAuthApp(&stubAuthService{
			signInResp: dto.SignInResponse{
				Token: "header.payload.signature",
				User:  dto.UserResponse{ID: 11, Role: "teacher"},
			},
		})

		status, envelope := postJSON(t, app, "/auth/signin", creds)
		require.Equal(t, fiber.StatusOK, status)
		require.True(t, envelope.Success)

		data, ok := envelope.Data.(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, "header.payload.signature", data["token"])
	})

	t.Run("unknown account", func(t *testing.T) {
		app := newAuthApp(&stubAuthService{signInErr: service.ErrUserNotFound})

		status, _ := postJSON(t, app, "/auth/signin", creds)
		require.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("wrong password", func(t *testing.T) {
		app := newAuthApp(&stubAuthService{signInErr: service.ErrInvalidCredentials})

		status, _ := postJSON(t, app, "/auth/signin", creds)
		require.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("pending approval", func(t *testing.T) {
		app := newAuthApp(&stubAuthService{signInErr: service.ErrTeacherNotApproved})

		status, envelope := postJSON(t, app, "/auth/signin", creds)
		require.Equal(t, fiber.StatusForbidden, status)
		require.Equal(t, "account awaiting approval", envelope.Message)
	})
}

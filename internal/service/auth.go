package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/credentials"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

// Auth logs users in and out and manages their account.
type Auth struct {
	api     API
	session *credentials.Session
	logger  *logger.Logger
}

func NewAuth(api API, session *credentials.Session, logger *logger.Logger) *Auth {
	return &Auth{api: api, session: session, logger: logger}
}

// Login exchanges a username and password for a token pair, fetches the
// profile with the new access token and only then stores the pair.
func (a *Auth) Login(ctx context.Context, username, password string) (model.AuthResult, error) {
	a.logger.Debug("Auth service: logging in",
		"username", username)

	var pair model.Credentials
	err := call(ctx, a.api, http.MethodPost, "/token/",
		model.LoginCredentials{Username: username, Password: password}, &pair,
		apiclient.WithoutAuth())
	if err != nil {
		a.logger.Info("Auth service: login rejected",
			"username", username,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to obtain tokens: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return model.AuthResult{}, errors.New("failed to obtain tokens: incomplete token pair")
	}

	var user model.User
	err = call(ctx, a.api, http.MethodGet, "/users/me/", nil, &user,
		apiclient.WithBearer(pair.AccessToken))
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to get current user: %w", err)
	}

	if err := a.session.Save(ctx, pair); err != nil {
		a.logger.Error("Auth service: failed to save credentials",
			"username", username,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to save credentials: %w", err)
	}

	a.logger.Info("Auth service: logged in",
		"username", username,
		"user_id", user.ID)

	return model.AuthResult{Credentials: pair, User: user}, nil
}

// Register creates an account and logs into it.
func (a *Auth) Register(ctx context.Context, input model.RegisterInput) (model.AuthResult, error) {
	a.logger.Debug("Auth service: registering user",
		"username", input.Username,
		"email", input.Email)

	err := call(ctx, a.api, http.MethodPost, "/users/", input, nil, apiclient.WithoutAuth())
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to register user: %w", err)
	}

	return a.Login(ctx, input.Username, input.Password)
}

func (a *Auth) CurrentUser(ctx context.Context) (model.User, error) {
	var user model.User
	if err := call(ctx, a.api, http.MethodGet, "/users/me/", nil, &user); err != nil {
		return model.User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

// Logout forgets the stored tokens. JWTs are stateless so the server is not told.
func (a *Auth) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	a.logger.Info("Auth service: logged out")
	return nil
}

func (a *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := call(ctx, a.api, http.MethodPost, "/users/password-reset/", body, nil, apiclient.WithoutAuth()); err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}
	return nil
}

func (a *Auth) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	if err := call(ctx, a.api, http.MethodPost, "/users/password-reset-confirm/", body, nil, apiclient.WithoutAuth()); err != nil {
		return fmt.Errorf("failed to confirm password reset: %w", err)
	}
	return nil
}

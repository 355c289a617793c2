package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/catalogo-ips/registration-gateway/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// IdentityAdmin implementation — GoTrue admin API
// ============================================================

type gotrueUsersPage struct {
	Users []domain.AuthUser `json:"users"`
}

// GetUserByEmail looks up an auth account by email. Returns nil, nil when
// no account exists.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	body, err := c.doAuth(ctx, http.MethodGet, "admin/users?email="+url.QueryEscape(email), nil)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if body == nil {
		return nil, nil
	}

	var page gotrueUsersPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode admin users: %w", err)
	}

	// Older GoTrue versions ignore the email filter and return a page.
	for i := range page.Users {
		if strings.EqualFold(page.Users[i].Email, email) {
			return &page.Users[i], nil
		}
	}
	return nil, nil
}

// CreateUser creates an auth account with the email already confirmed, so
// no confirmation mail is ever sent for gateway registrations.
func (c *Client) CreateUser(ctx context.Context, email string) (*domain.AuthUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUser")
	defer span.End()

	payload := map[string]any{
		"email":         email,
		"email_confirm": true,
	}

	body, err := c.doAuth(ctx, http.MethodPost, "admin/users", payload)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	var user domain.AuthUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode created user: %w", err)
	}
	if user.ID == "" {
		return nil, &domain.ErrExternalService{
			Service: "supabase/auth",
			Err:     errors.New("create user returned no id"),
		}
	}
	return &user, nil
}

// DeleteUser removes the auth account by GoTrue user id. A 404 from GoTrue
// is not an error: the account is already gone.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteUser")
	defer span.End()

	_, err := c.doAuth(ctx, http.MethodDelete, "admin/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	return nil
}

// doAuth executes an authenticated request against the GoTrue API.
func (c *Client) doAuth(ctx context.Context, method, path string, payload map[string]any) ([]byte, error) {
	return c.withBreaker(func() ([]byte, error) {
		url := fmt.Sprintf("%s/auth/v1/%s", c.baseURL, path)

		var reqBody io.Reader
		if payload != nil {
			jsonBody, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			reqBody = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, err
		}

		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: auth request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err),
			)
			return nil, err
		}
		defer resp.Body.Close()

		body, err := readBody(resp)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
			return nil, nil
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: auth non-2xx",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return nil, fmt.Errorf("supabase auth %s %s returned %d: %s", method, path, resp.StatusCode, string(body))
		}

		c.logger.Debug("supabase: auth request OK",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return body, nil
	})
}

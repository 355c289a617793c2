// Package supabase provides a client for Supabase (PostgREST + GoTrue).
// All profile persistence and auth account lifecycle operations of the
// gateway are delegated to it.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase PostgREST and GoTrue admin APIs.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	logger         *zap.Logger
}

// NewClient creates a Supabase client. When no anon key is configured the
// service role key doubles as the apikey header.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *Client {
	if apiKey == "" {
		apiKey = serviceRoleKey
	}
	c := &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		logger:         logger,
	}
	c.warnIfNotServiceRole()
	return c
}

// warnIfNotServiceRole decodes the configured key without verifying its
// signature and warns when the role claim is not service_role. Admin calls
// made with an anon key fail later with opaque 401s.
func (c *Client) warnIfNotServiceRole() {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.serviceRoleKey, claims); err != nil {
		c.logger.Warn("supabase: service role key is not a parseable JWT", zap.Error(err))
		return
	}
	if role, _ := claims["role"].(string); role != "service_role" {
		c.logger.Warn("supabase: configured key does not carry the service_role claim",
			zap.String("role", role),
		)
	}
}

// withBreaker routes a call through the circuit breaker. The breaker fails
// fast when Supabase keeps erroring; no retry is ever attempted.
func (c *Client) withBreaker(fn func() ([]byte, error)) ([]byte, error) {
	out, err := c.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	body, _ := out.([]byte)
	return body, nil
}

// doRequest executes an authenticated GET/HEAD request to PostgREST.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	return c.withBreaker(func() ([]byte, error) {
		url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			c.logger.Error("supabase: failed to create request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err),
			)
			return nil, err
		}

		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("supabase: request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err),
			)
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
			return nil, nil // no data
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("supabase: non-2xx response",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			return nil, fmt.Errorf("supabase returned status %d: %s", resp.StatusCode, string(body))
		}

		c.logger.Debug("supabase: request OK",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)

		return body, nil
	})
}

// PingRest probes PostgREST with a minimal select on the profiles table.
func (c *Client) PingRest(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "profiles?select=id&limit=1")
	return err
}

// PingAuth probes the GoTrue health endpoint.
func (c *Client) PingAuth(ctx context.Context) error {
	_, err := c.doAuth(ctx, http.MethodGet, "health", nil)
	return err
}

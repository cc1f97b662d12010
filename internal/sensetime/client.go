// Package sensetime talks to the Sensetime device platform, which serves
// the face images captured by the gate devices. Images are fetched by the
// path the capture records carry, base64-encoded for the API responses,
// and cached in Redis so repeated timeline queries do not hammer the
// platform.
package sensetime

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/store"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const imageCacheKeyPrefix = "sensetime:image:"

// loginRequest is the platform's credential payload.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// tokenHolder guards the bearer token handed out at login. The platform
// expires tokens without warning, so holders are replaced on 401 rather
// than on a schedule.
type tokenHolder struct {
	mu    sync.RWMutex
	token string
}

func (h *tokenHolder) get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *tokenHolder) set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// Client fetches captured images from the Sensetime platform.
type Client struct {
	httpClient *resty.Client
	username   string
	password   string
	holder     tokenHolder
	cache      store.KV
	cacheTTL   time.Duration
	logger     *zap.Logger
}

func NewClient(baseURL, username, password string, cache store.KV, cacheTTL time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		username:   username,
		password:   password,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// login exchanges credentials for a fresh token and installs it in the
// holder.
func (c *Client) login(ctx context.Context) error {
	var response loginResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(loginRequest{Username: c.username, Password: c.password}).
		SetResult(&response).
		Post("/login")
	if err != nil {
		return fmt.Errorf("failed to login to Sensetime platform: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("Sensetime login rejected (status: %d)", resp.StatusCode())
	}

	c.holder.set(response.Token)
	c.logger.Info("Logged in to Sensetime platform")
	return nil
}

// FetchAsBase64 downloads the image at the given platform path and returns
// it base64-encoded. Cached results are served from Redis; a 401 triggers
// one re-login before the call is declared failed.
func (c *Client) FetchAsBase64(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}

	cacheKey := imageCacheKeyPrefix + path
	if cached, err := c.cache.Get(ctx, cacheKey); err == nil {
		return cached, nil
	} else if err != store.ErrMiss {
		c.logger.Warn("Image cache lookup failed", zap.Error(err))
	}

	if c.holder.get() == "" {
		if err := c.login(ctx); err != nil {
			return "", err
		}
	}

	body, status, err := c.fetch(ctx, path)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized {
		if err := c.login(ctx); err != nil {
			return "", err
		}
		body, status, err = c.fetch(ctx, path)
		if err != nil {
			return "", err
		}
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("Sensetime image fetch failed for %s (status: %d)", path, status)
	}

	encoded := base64.StdEncoding.EncodeToString(body)
	if err := c.cache.Set(ctx, cacheKey, encoded, c.cacheTTL); err != nil {
		c.logger.Warn("Failed to cache image", zap.String("path", path), zap.Error(err))
	}
	return encoded, nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, int, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.holder.get()).
		Get(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch image %s: %w", path, err)
	}
	return resp.Body(), resp.StatusCode(), nil
}

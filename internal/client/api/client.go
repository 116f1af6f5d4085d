// Package api - HTTP клиент сервера gophauth для CLI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/gophauth/pkg/api"
)

// ErrNoToken - сервер ответил на логин без заголовка Authorization
var ErrNoToken = errors.New("server did not return a bearer token")

// Error - ответ сервера со статусом вне 2xx
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsStatus сообщает, что err - ответ сервера с кодом code
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// LoginResult - токен, полученный при входе
type LoginResult struct {
	AccessToken string
	ExpiresIn   int64 // секунды
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// bearer не передается на другой хост
				if len(via) > 0 && req.URL.Host == via[0].URL.Host {
					if auth := via[0].Header.Get("Authorization"); auth != "" {
						req.Header.Set("Authorization", auth)
					}
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.UserResponse, error) {
	var resp api.UserResponse
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию. Токен приходит в заголовке Authorization.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*LoginResult, error) {
	header, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, nil)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	scheme, token, ok := strings.Cut(header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, ErrNoToken
	}

	expiresIn, _ := strconv.ParseInt(header.Get(api.HeaderExpiresIn), 10, 64)

	return &LoginResult{AccessToken: token, ExpiresIn: expiresIn}, nil
}

// Me возвращает identity из токена
func (c *Client) Me(ctx context.Context, token string) (*api.MeResponse, error) {
	var resp api.MeResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// Profile возвращает запись пользователя из БД сервера
func (c *Client) Profile(ctx context.Context, token string) (*api.UserResponse, error) {
	var resp api.UserResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/profile", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	return &resp, nil
}

// GenerateOtp привязывает TOTP к пользователю
func (c *Client) GenerateOtp(ctx context.Context, token, userID string) (*api.OtpSecretResponse, error) {
	var resp api.OtpSecretResponse
	req := api.OtpGenerateRequest{UserID: userID}
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/otp/generate", token, req, &resp); err != nil {
		return nil, fmt.Errorf("otp generate request failed: %w", err)
	}
	return &resp, nil
}

// GetOtp возвращает сохраненный секрет
func (c *Client) GetOtp(ctx context.Context, token, userID string) (*api.OtpSecretResponse, error) {
	var resp api.OtpSecretResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/v1/otp/"+url.PathEscape(userID), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("otp get request failed: %w", err)
	}
	return &resp, nil
}

// VerifyOtp проверяет код; bearer не нужен
func (c *Client) VerifyOtp(ctx context.Context, req api.OtpVerifyRequest) (*api.OtpVerifyResponse, error) {
	var resp api.OtpVerifyResponse
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/otp/verify", "", req, &resp); err != nil {
		return nil, fmt.Errorf("otp verify request failed: %w", err)
	}
	return &resp, nil
}

// DeleteOtp отключает TOTP
func (c *Client) DeleteOtp(ctx context.Context, token, userID string) (*api.OtpDeleteResponse, error) {
	var resp api.OtpDeleteResponse
	if _, err := c.doRequest(ctx, http.MethodDelete, "/api/v1/otp/"+url.PathEscape(userID), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("otp delete request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос и возвращает заголовки ответа
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) (http.Header, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return nil, apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

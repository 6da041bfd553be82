package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	stdhttp "net/http"
	"net/url"
	"strings"

	"github.com/tidwall/pretty"

	DTO_http "skillogs_validator/internal/DTO/http"
	"skillogs_validator/internal/config"
)

const (
	tokenPath = "/api/auth/token"
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"
	// сколько тела не-JSON ответа показывать
	snippetLen = 200
)

// Client - HTTP-клиент API Skillogs.
type Client struct {
	baseURL  string
	origin   string
	language string
	email    string
	password string

	httpClient *stdhttp.Client
	session    *Session
}

// NewClient; httpClient может быть nil - тогда берётся клиент с таймаутом из конфига.
func NewClient(cfg config.Config, httpClient *stdhttp.Client) *Client {
	if httpClient == nil {
		httpClient = &stdhttp.Client{Timeout: cfg.Timeout}
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		origin:     cfg.Origin,
		language:   cfg.Language,
		email:      cfg.Email,
		password:   cfg.Password,
		httpClient: httpClient,
	}
	c.session = NewSession(c.login)
	return c
}

// Response - сырой ответ платформы; тип содержимого определяется по заголовку.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

func (r Response) IsJSON() bool {
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// Summary: JSON - отформатированным, остальное (обычно HTML) - обрезанным.
func (r Response) Summary() string {
	if r.IsJSON() && json.Valid(r.Body) {
		return strings.TrimRight(string(pretty.Pretty(r.Body)), "\n")
	}
	return "response is not JSON: " + snippet(r.Body)
}

// Authenticate получает токен заранее, чтобы ошибка логина всплыла сразу.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.session.Token(ctx)
	return err
}

// FetchSessionContent: GET <session>/content, тело отдаётся как есть.
func (c *Client) FetchSessionContent(ctx context.Context, sessionPath string) ([]byte, error) {
	resp, err := c.do(ctx, stdhttp.MethodGet, sessionPath+"/content", nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetch session content: %w", err)
	}
	return resp.Body, nil
}

// FetchContentDetails - детальный контент для поиска правильных ответов.
func (c *Client) FetchContentDetails(ctx context.Context, contentPath string) ([]byte, error) {
	resp, err := c.do(ctx, stdhttp.MethodGet, contentPath, nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetch content details: %w", err)
	}
	return resp.Body, nil
}

// SubmitValidation отправляет PUT с отметкой "done". Ответ возвращается и при ошибке статуса.
func (c *Client) SubmitValidation(ctx context.Context, contentPath string, body DTO_http.ValidationRequest) (Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := c.do(ctx, stdhttp.MethodPut, contentPath, bytes.NewReader(raw), "application/json")
	if resp == nil {
		return Response{}, err
	}
	return *resp, err
}

func (c *Client) login(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("email", c.email)
	form.Set("password", c.password)

	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrAuth, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %w", ErrAuth, &StatusError{
			Method: stdhttp.MethodPost, Path: tokenPath, Code: res.StatusCode, Body: snippet(body),
		})
	}

	var tok DTO_http.TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", ErrAuth, err)
	}
	if tok.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrAuth)
	}
	return tok.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := stdhttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	resp := &Response{Status: res.StatusCode, ContentType: res.Header.Get("Content-Type"), Body: raw}

	if res.StatusCode == stdhttp.StatusUnauthorized {
		c.session.Invalidate()
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return resp, &StatusError{Method: method, Path: path, Code: res.StatusCode, Body: snippet(raw)}
	}
	return resp, nil
}

// setHeaders - API проверяет Origin/Referer, поэтому притворяемся браузером.
func (c *Client) setHeaders(req *stdhttp.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("User-Agent", userAgent)
	if c.language != "" {
		req.Header.Set("X-Language", c.language)
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
		req.Header.Set("Referer", c.origin+"/")
	}
}

func snippet(b []byte) string {
	s := string(b)
	if len(s) <= snippetLen {
		return s
	}
	return s[:snippetLen] + "..."
}

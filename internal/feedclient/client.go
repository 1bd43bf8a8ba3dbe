// Package feedclient talks to the SwipeHire backend: the authenticated HTTP
// endpoints and the one-job-at-a-time feed stream.
package feedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"swipehire/internal/domain/job"

	"github.com/rs/zerolog"
)

var (
	ErrNoToken    = errors.New("not authenticated")
	ErrNilClient  = errors.New("nil feed client")
	ErrEmptyReply = errors.New("empty response")
)

// APIError is a non-2xx reply. Detail is whatever the server said.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend error: status=%d", e.Status)
	}
	return e.Detail
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger

	mu    sync.RWMutex
	token string
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithClientLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l.With().Str("component", "feedclient").Logger() }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetToken is called whenever the auth state changes. An empty token signs out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type rankedJobsResponse struct {
	Success    bool      `json:"success"`
	RankedJobs []job.Job `json:"ranked_jobs"`
	TotalJobs  int       `json:"total_jobs"`
}

// FetchInitial gets the first batch of ranked jobs.
func (c *Client) FetchInitial(ctx context.Context) ([]job.Job, error) {
	var out rankedJobsResponse
	if err := c.do(ctx, http.MethodGet, "/save-profile", nil, "", true, &out); err != nil {
		return nil, err
	}
	return nonNilJobs(out.RankedJobs), nil
}

// SaveProfile stores an edited job dict and returns the fresh ranking.
func (c *Client) SaveProfile(ctx context.Context, jobDict map[string]any) ([]job.Job, error) {
	b, err := json.Marshal(jobDict)
	if err != nil {
		return nil, err
	}
	var out rankedJobsResponse
	if err := c.do(ctx, http.MethodPost, "/save-profile", bytes.NewReader(b), "application/json", true, &out); err != nil {
		return nil, err
	}
	return nonNilJobs(out.RankedJobs), nil
}

type DynamicKeys struct {
	InfoDict []string `json:"info_dict"`
	JobDict  []string `json:"job_dict"`
}

type UploadResult struct {
	Success     bool           `json:"success"`
	UID         string         `json:"uid"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	InfoDict    map[string]any `json:"info_dict"`
	JobDict     map[string]any `json:"job_dict"`
	DynamicKeys DynamicKeys    `json:"dynamic_keys"`
}

// UploadResume sends a resume file for parsing.
func (c *Client) UploadResume(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	if c.Token() == "" {
		return UploadResult{}, ErrNoToken
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return UploadResult{}, err
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, err
	}

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/parse-resume", &buf, mw.FormDataContentType(), true, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Me returns the stored profile document.
func (c *Client) Me(ctx context.Context) (map[string]any, error) {
	var out struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, "", true, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Login authenticates and installs the access token on success.
func (c *Client) Login(ctx context.Context, email, password string) (Tokens, error) {
	return c.authenticate(ctx, "/auth/login", credentials{Email: email, Password: password})
}

// Register creates an account and installs the access token on success.
func (c *Client) Register(ctx context.Context, name, email, password string) (Tokens, error) {
	return c.authenticate(ctx, "/auth/register", credentials{Email: email, Password: password, Name: name})
}

func (c *Client) authenticate(ctx context.Context, path string, in credentials) (Tokens, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return Tokens{}, err
	}
	var env semanticResponse
	if err := c.do(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json", false, &env); err != nil {
		return Tokens{}, err
	}
	var tok Tokens
	if err := json.Unmarshal(env.Data, &tok); err != nil {
		return Tokens{}, err
	}
	if tok.AccessToken == "" {
		return Tokens{}, ErrEmptyReply
	}
	c.SetToken(tok.AccessToken)
	return tok, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool, out any) error {
	if c == nil || c.http == nil {
		return ErrNilClient
	}

	token := c.Token()
	if auth && token == "" {
		return ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := errorDetail(raw)
		c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Str("detail", detail).Msg("request failed")
		return &APIError{Status: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrEmptyReply
	}
	return json.Unmarshal(raw, out)
}

// errorDetail picks the first message-like field a backend error carries.
func errorDetail(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, s := range []string{body.Error, body.Detail, body.Message} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func nonNilJobs(in []job.Job) []job.Job {
	if in == nil {
		return []job.Job{}
	}
	return in
}

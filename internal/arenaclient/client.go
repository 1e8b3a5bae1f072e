package arenaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/Cheese-Arena/pkg/chessdto"
)

const sessionCookie = "session_key"

// Client talks to a Cheese Arena server and carries its session cookie.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int

	mu         sync.Mutex
	sessionKey string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the network dialer, e.g. with an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 30 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SessionKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionKey
}

func (c *Client) SetSessionKey(key string) {
	c.mu.Lock()
	c.sessionKey = key
	c.mu.Unlock()
}

type NewGameRequest struct {
	Color      string
	Difficulty string
	Username   string
	Replace    bool
}

func (c *Client) NewGame(ctx context.Context, in NewGameRequest) (*chessdto.GameResponse, error) {
	q := url.Values{}
	q.Set("color", in.Color)
	q.Set("difficulty", in.Difficulty)
	q.Set("username", in.Username)
	if in.Replace {
		q.Set("new_session", "true")
	}
	body, err := c.do(ctx, fasthttp.MethodGet, "/game?"+q.Encode(), nil, false)
	if err != nil {
		return nil, err
	}
	var out chessdto.GameResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// Move plays a UCI move and returns the position after the engine's reply.
// A rejected move yields *chessdto.APIError with status 406 and the FEN.
func (c *Client) Move(ctx context.Context, move string) (string, error) {
	body, err := c.do(ctx, fasthttp.MethodPost, "/move", []byte(move), false)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) GameEnd(ctx context.Context) (*chessdto.GameEndResponse, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, "/game_end", nil, false)
	if err != nil {
		return nil, err
	}
	var out chessdto.GameEndResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) Scores(ctx context.Context, limit int) ([]chessdto.ScoreEntry, error) {
	path := "/scores"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	body, err := c.do(ctx, fasthttp.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	var out []chessdto.ScoreEntry
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func (c *Client) Board(ctx context.Context) ([]byte, error) {
	return c.do(ctx, fasthttp.MethodGet, "/board.png", nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, retry bool) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if key := c.SessionKey(); key != "" {
		req.Header.SetCookie(sessionCookie, key)
	}
	if body != nil {
		req.Header.SetContentType("text/plain")
		req.SetBody(body)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else {
			c.captureSession(resp)
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				return append([]byte(nil), resp.Body()...), nil
			}
			lastErr = &chessdto.APIError{Status: status, Body: string(resp.Body())}
			if !shouldRetryStatus(status) {
				return nil, lastErr
			}
		}
		if attempt == attempts {
			break
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return nil, lastErr
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

func (c *Client) captureSession(resp *fasthttp.Response) {
	ck := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(ck)
	ck.SetKey(sessionCookie)
	if !resp.Header.Cookie(ck) {
		return
	}
	// An expired cookie clears the session.
	value := string(ck.Value())
	if ck.MaxAge() < 0 || (!ck.Expire().IsZero() && ck.Expire().Before(time.Now())) {
		value = ""
	}
	c.SetSessionKey(value)
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 502, 503, 504:
		return true
	default:
		return false
	}
}

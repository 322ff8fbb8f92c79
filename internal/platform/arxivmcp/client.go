package arxivmcp

import (
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

	"github.com/yungbote/coursekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/envutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

var ErrMissingConfig = errors.New("arXiv MCP server config not found in environment variables")

type Client interface {
	// Search performs one query against the server. Any HTTP status is a result; only
	// transport failures, timeouts and non-JSON bodies are errors.
	Search(ctx context.Context, query string, maxResults int) (*SearchResult, error)
}

type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		URL:     envutil.String("ARXIV_MCP_SERVER_URL", ""),
		Token:   envutil.String("ARXIV_MCP_SERVER_TOKEN", ""),
		Timeout: envutil.Millis("ARXIV_MCP_TIMEOUT_MS", 5*time.Second),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingConfig
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &client{
		log:        log.With("client", "ArxivMCPClient"),
		cfg:        cfg,
		httpClient: &http.Client{},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type SearchResult struct {
	Status     int
	StatusText string
	OK         bool
	Body       any
}

func (c *client) Search(ctx context.Context, query string, maxResults int) (*SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), c.cfg.Timeout)
	defer cancel()

	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("arxiv mcp: bad url: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("max_results", strconv.Itoa(maxResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("arxiv mcp: non-JSON response (status %d): %w", resp.StatusCode, err)
	}

	c.log.Debug("arXiv MCP search done", "status", resp.StatusCode)
	return &SearchResult{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		Body:       body,
	}, nil
}

// statusText strips the numeric code from resp.Status ("401 Unauthorized" -> "Unauthorized").
func statusText(resp *http.Response) string {
	s := strings.TrimSpace(resp.Status)
	if code, rest, ok := strings.Cut(s, " "); ok && code == strconv.Itoa(resp.StatusCode) {
		return strings.TrimSpace(rest)
	}
	if s == "" || s == strconv.Itoa(resp.StatusCode) {
		return http.StatusText(resp.StatusCode)
	}
	return s
}

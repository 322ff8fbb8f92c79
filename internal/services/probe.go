package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/coursekeeper-backend/internal/observability"
	"github.com/yungbote/coursekeeper-backend/internal/platform/apify"
	"github.com/yungbote/coursekeeper-backend/internal/platform/arxivmcp"
	"github.com/yungbote/coursekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

const (
	probeQuery      = "deep learning"
	probeMaxResults = 1
	probeOKMessage  = "Apify connection successful!"
)

var (
	// ErrProbeConfig marks a probe that could not start for missing credentials.
	ErrProbeConfig = errors.New("probe configuration missing")
	// ErrProbeFailed marks a probe whose blocking check failed.
	ErrProbeFailed = errors.New("probe failed")
)

// ProbeResult is the response envelope of the credential probe. Error and Details are set
// only when Success is false.
type ProbeResult struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
	Details string     `json:"details,omitempty"`
	Data    *ProbeData `json:"data,omitempty"`
}

type ProbeData struct {
	Apify    ApifyReport `json:"apify"`
	ArxivMCP ArxivReport `json:"arxivMcp"`
}

type ApifyReport struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	TokenValid bool   `json:"tokenValid"`
}

type ArxivReport struct {
	URL        string  `json:"url"`
	Status     int     `json:"status"`
	StatusText string  `json:"statusText"`
	TokenValid bool    `json:"tokenValid"`
	Error      *string `json:"error"`
	SampleData any     `json:"sampleData"`
}

type ProbeService interface {
	// Check verifies the Apify token (blocking) and the arXiv MCP server (non-blocking). The
	// result is always non-nil; a non-nil error means the request failed as a whole.
	Check(ctx context.Context) (*ProbeResult, error)
}

type probeService struct {
	log     *logger.Logger
	getenv  func(string) string
	metrics *observability.Metrics
}

// NewProbeService reads credentials through getenv on every call. A nil getenv uses
// os.Getenv.
func NewProbeService(log *logger.Logger, getenv func(string) string, metrics *observability.Metrics) ProbeService {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &probeService{
		log:     log.With("service", "ProbeService"),
		getenv:  getenv,
		metrics: metrics,
	}
}

func (ps *probeService) env(name string) string {
	return strings.TrimSpace(ps.getenv(name))
}

func (ps *probeService) envInt(name string, def int) int {
	raw := ps.env(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		ps.log.Warn("Ignoring invalid integer env", "name", name, "value", raw)
		return def
	}
	return n
}

func (ps *probeService) apifyConfig() apify.Config {
	return apify.Config{
		Token:      ps.env("APIFY_API_TOKEN"),
		BaseURL:    ps.env("APIFY_BASE_URL"),
		Timeout:    time.Duration(ps.envInt("APIFY_TIMEOUT_SECONDS", 15)) * time.Second,
		MaxRetries: ps.envInt("APIFY_MAX_RETRIES", 2),
	}
}

func (ps *probeService) arxivConfig() arxivmcp.Config {
	return arxivmcp.Config{
		URL:     ps.env("ARXIV_MCP_SERVER_URL"),
		Token:   ps.env("ARXIV_MCP_SERVER_TOKEN"),
		Timeout: time.Duration(ps.envInt("ARXIV_MCP_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}

func failed(msg, details string) *ProbeResult {
	return &ProbeResult{Success: false, Error: msg, Details: details}
}

func (ps *probeService) Check(ctx context.Context) (*ProbeResult, error) {
	ctx, span := observability.Tracer().Start(ctxutil.Default(ctx), "probe.check")
	defer span.End()

	apifyCfg := ps.apifyConfig()
	arxivCfg := ps.arxivConfig()

	apifyClient, err := apify.New(ps.log, apifyCfg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return failed(err.Error(), ""), fmt.Errorf("%w: %w", ErrProbeConfig, err)
	}
	arxivClient, err := arxivmcp.New(ps.log, arxivCfg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return failed(err.Error(), ""), fmt.Errorf("%w: %w", ErrProbeConfig, err)
	}

	ps.log.Info("Testing Apify API token")
	user, err := ps.checkApify(ctx, apifyClient)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ps.log.Error("Apify check failed", "error", err)
		return failed(err.Error(), fmt.Sprintf("%T: %+v", errors.Unwrap(err), err)), fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}
	ps.log.Info("Apify token valid", "username", user.Username)

	ps.log.Info("Testing arXiv MCP server")
	arxiv := ps.checkArxiv(ctx, arxivClient, arxivCfg.URL)
	span.SetAttributes(attribute.Int("arxiv.status", arxiv.Status), attribute.Bool("arxiv.ok", arxiv.TokenValid))

	return &ProbeResult{
		Success: true,
		Message: probeOKMessage,
		Data: &ProbeData{
			Apify: ApifyReport{
				Username:   user.Username,
				Email:      user.Email,
				TokenValid: true,
			},
			ArxivMCP: arxiv,
		},
	}, nil
}

func (ps *probeService) checkApify(ctx context.Context, c apify.Client) (*apify.User, error) {
	ctx, span := observability.Tracer().Start(ctx, "probe.apify")
	defer span.End()

	user, err := c.Me(ctx)
	ps.metrics.ObserveProbe("apify", err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("apify: %w", err)
	}
	return user, nil
}

// checkArxiv never fails the probe; transport errors, timeouts and unreadable bodies are
// reported as status 0.
func (ps *probeService) checkArxiv(ctx context.Context, c arxivmcp.Client, url string) ArxivReport {
	ctx, span := observability.Tracer().Start(ctx, "probe.arxiv_mcp")
	defer span.End()

	res, err := c.Search(ctx, probeQuery, probeMaxResults)
	if err != nil {
		ps.metrics.ObserveProbe("arxiv_mcp", false)
		span.RecordError(err)
		ps.log.Warn("arXiv MCP server timeout or error", "error", err)
		msg := err.Error()
		return ArxivReport{
			URL:        url,
			Status:     0,
			StatusText: "Timeout",
			TokenValid: false,
			Error:      &msg,
			SampleData: map[string]any{"error": msg},
		}
	}
	ps.metrics.ObserveProbe("arxiv_mcp", res.OK)
	span.SetAttributes(attribute.Int("http.status_code", res.Status))

	statusText := res.StatusText
	if statusText == "" {
		statusText = "Unknown"
	}
	return ArxivReport{
		URL:        url,
		Status:     res.Status,
		StatusText: statusText,
		TokenValid: res.OK,
		SampleData: res.Body,
	}
}

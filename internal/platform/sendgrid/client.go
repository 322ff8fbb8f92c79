package sendgrid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/coursekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/envutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/httpx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.sendgrid.com"

var ErrNotConfigured = errors.New("missing SENDGRID_API_KEY")

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:           envutil.String("SENDGRID_API_KEY", ""),
		BaseURL:          envutil.String("SENDGRID_BASE_URL", DefaultBaseURL),
		DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", ""),
		DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", "CourseKeeper"),
		Timeout:          envutil.Seconds("SENDGRID_TIMEOUT_SECONDS", 30*time.Second),
		MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 4),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

// New fails with ErrNotConfigured when no API key is set.
func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Attachment struct {
	Filename    string
	MIMEType    string
	Content     []byte
	Disposition string
}

type SendEmailRequest struct {
	From        EmailAddress
	To          []EmailAddress
	Subject     string
	Text        string
	HTML        string
	Categories  []string
	Attachments []Attachment
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

// Wire shapes of POST /v3/mail/send.
type (
	mailPayload struct {
		Personalizations []mailPersonalization `json:"personalizations"`
		From             EmailAddress          `json:"from"`
		Subject          string                `json:"subject"`
		Content          []mailContent         `json:"content"`
		Categories       []string              `json:"categories,omitempty"`
		Attachments      []mailAttachment      `json:"attachments,omitempty"`
	}
	mailPersonalization struct {
		To []EmailAddress `json:"to"`
	}
	mailContent struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	mailAttachment struct {
		Content     string `json:"content"`
		Type        string `json:"type,omitempty"`
		Filename    string `json:"filename"`
		Disposition string `json:"disposition,omitempty"`
	}
)

// payload validates the request and encodes it for the API. An empty From uses def.
func (r SendEmailRequest) payload(def EmailAddress) (*mailPayload, error) {
	from := r.From
	if strings.TrimSpace(from.Email) == "" {
		from = def
	}
	from.Email = strings.TrimSpace(from.Email)
	subject := strings.TrimSpace(r.Subject)

	switch {
	case from.Email == "":
		return nil, errors.New("sendgrid: from address required (set SENDGRID_FROM_EMAIL)")
	case len(r.To) == 0:
		return nil, errors.New("sendgrid: at least one recipient required")
	case subject == "":
		return nil, errors.New("sendgrid: subject required")
	}

	p := &mailPayload{
		Personalizations: []mailPersonalization{{To: r.To}},
		From:             from,
		Subject:          subject,
		Categories:       r.Categories,
	}
	// The API rejects text/html ahead of text/plain.
	if t := strings.TrimSpace(r.Text); t != "" {
		p.Content = append(p.Content, mailContent{Type: "text/plain", Value: t})
	}
	if h := strings.TrimSpace(r.HTML); h != "" {
		p.Content = append(p.Content, mailContent{Type: "text/html", Value: h})
	}
	if len(p.Content) == 0 {
		return nil, errors.New("sendgrid: text or html body required")
	}

	for _, a := range r.Attachments {
		name := strings.TrimSpace(a.Filename)
		if name == "" {
			return nil, errors.New("sendgrid: attachment filename required")
		}
		if len(a.Content) == 0 {
			return nil, fmt.Errorf("sendgrid: attachment %q is empty", name)
		}
		p.Attachments = append(p.Attachments, mailAttachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        strings.TrimSpace(a.MIMEType),
			Filename:    name,
			Disposition: strings.TrimSpace(a.Disposition),
		})
	}
	return p, nil
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	p, err := req.payload(EmailAddress{Email: c.cfg.DefaultFromEmail, Name: c.cfg.DefaultFromName})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: encode mail: %w", err)
	}
	resp, err := c.post(ctx, "/v3/mail/send", body)
	if err != nil {
		return nil, err
	}
	return &SendEmailResult{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}, nil
}

const maxErrorBody = 4000

type APIErrorItem struct {
	Message string `json:"message"`
	Field   any    `json:"field,omitempty"`
}

// HTTPError is a non-2xx answer from the API.
type HTTPError struct {
	StatusCode int
	Body       string
	Errors     []APIErrorItem
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "sendgrid: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if len(e.Errors) > 0 && strings.TrimSpace(e.Errors[0].Message) != "" {
		msg = e.Errors[0].Message
	}
	switch {
	case msg == "":
		msg = "<empty body>"
	case len(msg) > maxErrorBody:
		msg = msg[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// post retries transient failures with doubling backoff, honoring Retry-After.
func (c *client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	ctx = ctxutil.Default(ctx)
	wait := time.Second
	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, path, body)
		if err == nil {
			return resp, nil
		}
		if attempt >= c.cfg.MaxRetries || !httpx.IsRetryableError(err) {
			return nil, err
		}
		sleep := httpx.JitterSleep(httpx.RetryAfterDuration(resp, wait, 10*time.Second))
		c.log.Warn("SendGrid request failed, retrying", "path", path, "attempt", attempt+1, "sleep", sleep.String(), "error", err)
		if err := httpx.Sleep(ctx, sleep); err != nil {
			return nil, err
		}
		wait *= 2
	}
}

func (c *client) attempt(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	var parsed struct {
		Errors []APIErrorItem `json:"errors"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		he.Errors = parsed.Errors
	}
	return resp, he
}

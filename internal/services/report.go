package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	pkgerrors "github.com/yungbote/coursekeeper-backend/internal/pkg/errors"
	"github.com/yungbote/coursekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
	"github.com/yungbote/coursekeeper-backend/internal/platform/sendgrid"
)

var ErrEmailDisabled = errors.New("email delivery is not configured")

// Report is one rendered email.
type Report struct {
	Subject  string
	Markdown string
	HTML     string
}

// YearSections are the tabs of a year's detail view, each a markdown fragment.
type YearSections struct {
	Summary      string
	Papers       string
	Videos       string
	LearningPath string
}

type ReportService interface {
	RenderYear(data types.YearData, baselineYear int) (*Report, error)
	EmailYear(ctx context.Context, to string, subjectID uuid.UUID, baselineYear, year int) (*sendgrid.SendEmailResult, error)
	// EmailAll sends one digest covering every timeline year from the baseline on.
	EmailAll(ctx context.Context, to string, subjectID uuid.UUID, baselineYear int) (*sendgrid.SendEmailResult, error)
}

type reportService struct {
	log      *logger.Logger
	catalog  CatalogService
	mailer   sendgrid.Client
	md       goldmark.Markdown
	validate *validator.Validate
}

// NewReportService takes a nil mailer when SendGrid is not configured; rendering still works
// and the Email methods return ErrEmailDisabled.
func NewReportService(log *logger.Logger, catalogService CatalogService, mailer sendgrid.Client) ReportService {
	return &reportService{
		log:      log.With("service", "ReportService"),
		catalog:  catalogService,
		mailer:   mailer,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		validate: validator.New(),
	}
}

func RenderYearSections(data types.YearData, baselineYear int) YearSections {
	var s YearSections

	var b strings.Builder
	fmt.Fprintf(&b, "## %d Patch Notes: %s\n\n", data.Year, data.Summary)
	if after := data.Year - baselineYear; after > 0 {
		fmt.Fprintf(&b, "_%d years after your %d baseline_\n\n", after, baselineYear)
	}
	if data.Description != "" {
		b.WriteString(data.Description + "\n\n")
	}
	b.WriteString("### Changes\n\n")
	for _, c := range data.Changes {
		fmt.Fprintf(&b, "- **%s** %s: %s\n", c.Type, c.Title, c.Rationale)
	}
	s.Summary = b.String()

	b.Reset()
	b.WriteString("### Key Papers\n\n")
	for _, p := range data.Papers {
		fmt.Fprintf(&b, "- [%s](%s) by %s (%s)\n", p.Title, p.URL, p.Authors, p.Venue)
	}
	s.Papers = b.String()

	b.Reset()
	b.WriteString("### Videos\n\n")
	for _, v := range data.Videos {
		fmt.Fprintf(&b, "- [%s](%s) (%s)\n", v.Title, v.URL, v.Channel)
	}
	s.Videos = b.String()

	lp := catalog.BuildLearningPath(data, baselineYear)
	b.Reset()
	b.WriteString("### Your Learning Path\n\n")
	for _, p := range lp.Priorities {
		fmt.Fprintf(&b, "%d. **%s** (~%dh): %s\n", p.Rank, p.Title, p.EstimatedHours, p.Rationale)
	}
	b.WriteString("\nRecommended resources:\n\n")
	for _, r := range lp.Resources {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	s.LearningPath = b.String()

	return s
}

func (s YearSections) Markdown() string {
	return strings.Join([]string{s.Summary, s.Papers, s.Videos, s.LearningPath}, "\n")
}

func (rs *reportService) toHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := rs.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report html: %w", err)
	}
	return buf.String(), nil
}

func (rs *reportService) RenderYear(data types.YearData, baselineYear int) (*Report, error) {
	markdown := "# CourseKeeper Report\n\n" + RenderYearSections(data, baselineYear).Markdown()
	html, err := rs.toHTML(markdown)
	if err != nil {
		return nil, err
	}
	return &Report{
		Subject:  fmt.Sprintf("CourseKeeper: %d Patch Notes", data.Year),
		Markdown: markdown,
		HTML:     html,
	}, nil
}

func (rs *reportService) renderDigest(subjectTitle string, baselineYear int, years []types.YearData) (*Report, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# CourseKeeper: %s since %d\n\n", subjectTitle, baselineYear)
	for _, data := range years {
		b.WriteString(RenderYearSections(data, baselineYear).Markdown())
		b.WriteString("\n---\n\n")
	}
	markdown := b.String()
	html, err := rs.toHTML(markdown)
	if err != nil {
		return nil, err
	}
	return &Report{
		Subject:  fmt.Sprintf("CourseKeeper: %s yearly reports since %d", subjectTitle, baselineYear),
		Markdown: markdown,
		HTML:     html,
	}, nil
}

func (rs *reportService) checkRecipient(to string) error {
	if rs.mailer == nil {
		return ErrEmailDisabled
	}
	if err := rs.validate.Var(to, "required,email"); err != nil {
		return fmt.Errorf("%w: recipient %q is not a valid email", pkgerrors.ErrInvalidArgument, to)
	}
	return nil
}

func (rs *reportService) EmailYear(ctx context.Context, to string, subjectID uuid.UUID, baselineYear, year int) (*sendgrid.SendEmailResult, error) {
	ctx = ctxutil.Default(ctx)
	if err := rs.checkRecipient(to); err != nil {
		return nil, err
	}
	res, err := rs.catalog.Lookup(dbctx.Context{Ctx: ctx}, subjectID, year)
	if err != nil {
		return nil, err
	}
	if res.Outcome == catalog.OutcomeNotFound || res.Data == nil {
		return nil, fmt.Errorf("%w: no patch notes for %d", pkgerrors.ErrNotFound, year)
	}
	report, err := rs.RenderYear(*res.Data, baselineYear)
	if err != nil {
		return nil, err
	}
	return rs.send(ctx, to, report, fmt.Sprintf("coursekeeper-%d.md", year))
}

func (rs *reportService) EmailAll(ctx context.Context, to string, subjectID uuid.UUID, baselineYear int) (*sendgrid.SendEmailResult, error) {
	ctx = ctxutil.Default(ctx)
	if err := rs.checkRecipient(to); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	subject, err := rs.catalog.GetSubject(dbc, subjectID)
	if err != nil {
		return nil, err
	}
	entries, err := rs.catalog.Timeline(dbc, subjectID, baselineYear)
	if err != nil {
		return nil, err
	}
	years := make([]types.YearData, 0, len(entries))
	for _, e := range entries {
		res, err := rs.catalog.Lookup(dbc, subjectID, e.Year)
		if err != nil {
			return nil, err
		}
		if res.Data != nil {
			years = append(years, *res.Data)
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no timeline years after %d", pkgerrors.ErrNotFound, baselineYear)
	}
	report, err := rs.renderDigest(subject.Title, baselineYear, years)
	if err != nil {
		return nil, err
	}
	return rs.send(ctx, to, report, "coursekeeper-all-years.md")
}

func (rs *reportService) send(ctx context.Context, to string, report *Report, attachment string) (*sendgrid.SendEmailResult, error) {
	res, err := rs.mailer.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: to}},
		Subject:    report.Subject,
		Text:       report.Markdown,
		HTML:       report.HTML,
		Categories: []string{"coursekeeper-report"},
		Attachments: []sendgrid.Attachment{{
			Filename:    attachment,
			MIMEType:    "text/markdown",
			Content:     []byte(report.Markdown),
			Disposition: "attachment",
		}},
	})
	if err != nil {
		rs.log.Error("Report email failed", "email", to, "error", err)
		return nil, fmt.Errorf("send report: %w", err)
	}
	rs.log.Info("Report emailed", "email", to, "message_id", res.MessageID)
	return res, nil
}

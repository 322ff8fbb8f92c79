package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	pkgerrors "github.com/yungbote/coursekeeper-backend/internal/pkg/errors"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
	"github.com/yungbote/coursekeeper-backend/internal/platform/sendgrid"
)

type fakeMailer struct {
	sent []sendgrid.SendEmailRequest
}

func (f *fakeMailer) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	f.sent = append(f.sent, req)
	return &sendgrid.SendEmailResult{StatusCode: 202, MessageID: "m1"}, nil
}

func TestRenderYear(t *testing.T) {
	svc := NewReportService(logger.Nop(), nil, nil)
	data := catalog.YearData{
		Year:        2012,
		Summary:     "The Deep Learning Revolution Begins",
		Description: "AlexNet wins ImageNet.",
		Changes: []catalog.Change{
			{Type: catalog.ChangeAdd, Title: "CNNs", Rationale: "AlexNet"},
			{Type: catalog.ChangeDeprecate, Title: "SIFT", Rationale: "learned features"},
		},
		Papers: []catalog.Paper{{Title: "ImageNet Classification", Authors: "Krizhevsky", URL: "https://papers.nips.cc/paper/4824", Venue: "NIPS 2012"}},
		Videos: []catalog.Video{{Title: "CNNs explained", URL: "https://youtube.com/watch?v=x", Channel: "Two Minute Papers"}},
	}

	r, err := svc.RenderYear(data, 2008)
	require.NoError(t, err)
	assert.Equal(t, "CourseKeeper: 2012 Patch Notes", r.Subject)
	assert.Contains(t, r.Markdown, "## 2012 Patch Notes: The Deep Learning Revolution Begins")
	assert.Contains(t, r.Markdown, "_4 years after your 2008 baseline_")
	assert.Contains(t, r.Markdown, "1. **CNNs** (~2h): AlexNet")
	assert.Contains(t, r.Markdown, "Deep Learning Book - Chapter on CNNs")
	assert.Contains(t, r.HTML, "<strong>DEPRECATE</strong>")
	assert.Contains(t, r.HTML, `<a href="https://papers.nips.cc/paper/4824">ImageNet Classification</a>`)
}

func TestEmailDisabledWithoutMailer(t *testing.T) {
	f := newCatalogFixture(t)
	svc := NewReportService(logger.Nop(), f.svc, nil)

	_, err := svc.EmailYear(context.Background(), "a@example.com", f.subjectID, 2008, 2012)
	require.ErrorIs(t, err, ErrEmailDisabled)
	_, err = svc.EmailAll(context.Background(), "a@example.com", f.subjectID, 2008)
	require.ErrorIs(t, err, ErrEmailDisabled)
}

func TestEmailYear(t *testing.T) {
	f := newCatalogFixture(t)
	mailer := &fakeMailer{}
	svc := NewReportService(logger.Nop(), f.svc, mailer)
	ctx := context.Background()

	_, err := svc.EmailYear(ctx, "not-an-email", f.subjectID, 2008, 2012)
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	_, err = svc.EmailYear(ctx, "a@example.com", f.subjectID, 2008, 2030)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)

	res, err := svc.EmailYear(ctx, "a@example.com", f.subjectID, 2008, 2012)
	require.NoError(t, err)
	assert.Equal(t, "m1", res.MessageID)

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "a@example.com", sent.To[0].Email)
	assert.Contains(t, sent.Text, "The Deep Learning Revolution Begins")
	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, "coursekeeper-2012.md", sent.Attachments[0].Filename)
}

func TestEmailAll(t *testing.T) {
	f := newCatalogFixture(t)
	mailer := &fakeMailer{}
	svc := NewReportService(logger.Nop(), f.svc, mailer)

	_, err := svc.EmailAll(context.Background(), "a@example.com", f.subjectID, 2008)
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	body := mailer.sent[0].Text
	assert.Equal(t, catalog.TimelineTo-catalog.TimelineFrom+1, strings.Count(body, " Patch Notes: "))
	assert.Contains(t, body, "# CourseKeeper: Computer Vision since 2008")
	assert.Contains(t, body, "Incremental improvements in computer vision")

	_, err = svc.EmailAll(context.Background(), "a@example.com", f.subjectID, 2030)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

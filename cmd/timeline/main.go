package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/yungbote/coursekeeper-backend/internal/app"
	"github.com/yungbote/coursekeeper-backend/internal/cli"
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/flow"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/services"
	"github.com/yungbote/coursekeeper-backend/internal/tui"
)

type options struct {
	form flow.UploadForm
	year int
}

func main() {
	if err := newTimelineCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newTimelineCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "timeline",
		Short:         "Browse what changed in your field since you took the course",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cli.IsTerminal(os.Stdout) && opts.year == 0 {
				return runInteractive(ctx, opts)
			}
			return runPlain(ctx, cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.form.Subject, "subject", "s", flow.DefaultSubject, "Subject to browse")
	cmd.Flags().IntVarP(&opts.form.BaselineYear, "baseline", "b", catalog.DefaultBaselineYear, "Year you took the course")
	cmd.Flags().StringVarP(&opts.form.Email, "email", "e", "", "Where to send reports")
	cmd.Flags().StringVar(&opts.form.SyllabusPath, "syllabus", "", "Syllabus file to upload")
	cmd.Flags().IntVarP(&opts.year, "year", "y", 0, "Print one year's patch notes and exit")
	return cmd
}

func runInteractive(ctx context.Context, opts options) error {
	// Log lines would tear the alternate screen.
	if os.Getenv("LOG_MODE") == "" {
		_ = os.Setenv("LOG_MODE", "nop")
	}
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("init markdown renderer: %w", err)
	}
	backend := tui.NewServiceBackend(a.Services.Catalog, a.Services.Report)
	return tui.Run(ctx, backend, tui.WithForm(opts.form), tui.WithRenderer(renderer))
}

func runPlain(ctx context.Context, cmd *cobra.Command, opts options) error {
	out := cmd.OutOrStdout()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dbc := dbctx.Context{Ctx: ctx}
	subject, err := a.Services.Catalog.ResolveSubject(dbc, opts.form.Subject)
	if err != nil {
		return err
	}

	if opts.year != 0 {
		res, err := a.Services.Catalog.Lookup(dbc, subject.ID, opts.year)
		if err != nil {
			return err
		}
		if res.Data == nil {
			return fmt.Errorf("no patch notes for %d", opts.year)
		}
		fmt.Fprintln(out, services.RenderYearSections(*res.Data, opts.form.BaselineYear).Markdown())
		return nil
	}

	entries, err := a.Services.Catalog.Timeline(dbc, subject.ID, opts.form.BaselineYear)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		mustLearn := ""
		if e.MustLearn {
			mustLearn = "Must Learn!"
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Year),
			e.Headline,
			string(e.Impact),
			mustLearn,
			fmt.Sprintf("+%d", e.YearsAfterBaseline),
		})
	}
	fmt.Fprintf(out, "%s since %d\n", subject.Title, opts.form.BaselineYear)
	fmt.Fprintln(out, cli.RenderTable(out,
		[]string{"Year", "Headline", "Impact", "", "Years"},
		rows,
		[]cli.Align{cli.AlignRight, cli.AlignLeft, cli.AlignLeft, cli.AlignLeft, cli.AlignRight},
	))
	return nil
}

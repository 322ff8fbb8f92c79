package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/coursekeeper-backend/internal/app"
	"github.com/yungbote/coursekeeper-backend/internal/cli"
	"github.com/yungbote/coursekeeper-backend/internal/seed"
)

func main() {
	if err := newSeedCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error during seed:", err)
		}
		os.Exit(1)
	}
}

func newSeedCommand() *cobra.Command {
	var fixturePath string
	var quiet bool

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Load the demo catalog into the database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSeed(ctx, cmd, fixturePath, quiet)
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "YAML fixture file (defaults to the built-in catalog)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the final table")
	return cmd
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.LoadFixture()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return seed.ParseFixture(b)
}

func runSeed(ctx context.Context, cmd *cobra.Command, fixturePath string, quiet bool) error {
	out := cmd.OutOrStdout()

	fixture, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Store.AutoMigrate(); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	seeder := seed.NewSeeder(a.Store.DB(), a.Log, a.Repos, fixture, seed.ConfigFromEnv())
	if !quiet {
		seeder.Progress = func(msg string) { fmt.Fprintln(out, msg) }
	}
	report, err := seeder.Run(ctx)
	if err != nil {
		return err
	}

	invalidateLookups(ctx, a, report.SubjectID, out, quiet)

	printReport(cmd, report)
	return nil
}

// invalidateLookups drops the subject's cached lookups so a running server sees the new
// rows. Only a shared cache can be reached from here; a memory cache belongs to the server
// process and expires on its own TTL.
func invalidateLookups(ctx context.Context, a *app.App, subjectID uuid.UUID, out io.Writer, quiet bool) {
	if !a.Cfg.Cache.Shared() {
		a.Log.Debug("Skipping lookup cache invalidation for a process-local cache", "backend", a.Cfg.Cache.Backend)
		return
	}
	n, err := a.Services.Catalog.InvalidateSubject(ctx, subjectID)
	if err != nil {
		a.Log.Warn("Lookup cache invalidation failed", "subject_id", subjectID, "error", err)
		return
	}
	if n > 0 && !quiet {
		fmt.Fprintf(out, "Invalidated %d cached lookups\n", n)
	}
}

func printReport(cmd *cobra.Command, report *seed.Report) {
	out := cmd.OutOrStdout()
	verb := "Reused"
	if report.SubjectCreated {
		verb = "Created"
	}
	fmt.Fprintf(out, "\n%s subject %q (%s) for %s\n", verb, report.SubjectTitle, report.SubjectID, report.UserEmail)
	fmt.Fprintf(out, "Topics: %d  Timeline events: %d  Year runs: %d  Diffs: %d  Canon items: %d\n\n",
		report.Topics, report.TimelineEvents, report.YearRuns, report.YearDiffs, report.CanonItems)

	rows := make([][]string, 0, len(report.Years))
	for _, y := range report.Years {
		rows = append(rows, []string{
			strconv.Itoa(y.Year),
			strconv.Itoa(y.Changes),
			strconv.Itoa(y.Papers),
			strconv.Itoa(y.Videos),
			y.RunID.String(),
		})
	}
	fmt.Fprintln(out, cli.RenderTable(out,
		[]string{"Year", "Changes", "Papers", "Videos", "Run"},
		rows,
		[]cli.Align{cli.AlignRight, cli.AlignRight, cli.AlignRight, cli.AlignRight, cli.AlignLeft},
	))

	if len(report.Deleted) > 0 {
		tables := make([]string, 0, len(report.Deleted))
		for name := range report.Deleted {
			tables = append(tables, name)
		}
		sort.Strings(tables)
		deleted := make([][]string, 0, len(tables))
		for _, name := range tables {
			deleted = append(deleted, []string{name, strconv.FormatInt(report.Deleted[name], 10)})
		}
		fmt.Fprintln(out, cli.RenderTable(out, []string{"Cleared", "Rows"}, deleted, []cli.Align{cli.AlignLeft, cli.AlignRight}))
	}
}

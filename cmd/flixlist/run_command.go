package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"flixlist/internal/catalog"
	"flixlist/internal/notifications"
	"flixlist/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noNotify bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, filter and publish the curated catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			deps, err := pipeline.NewDeps(cfg, logger)
			if err != nil {
				return err
			}
			if noNotify {
				deps.Notifier = notifications.NewService(nil)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, runErr := pipeline.Run(runCtx, deps)
			if jsonOutput {
				if err := writeJSON(cmd, newSummaryView(summary, runErr)); err != nil {
					return err
				}
			} else if runErr == nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			}
			if runErr != nil && runCtx.Err() != nil {
				return context.Canceled
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "Skip ntfy notifications for this run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func renderSummary(s pipeline.Summary) string {
	rows := [][]string{
		{"Movies fetched", strconv.Itoa(s.Fetched[catalog.Movie])},
		{"Series fetched", strconv.Itoa(s.Fetched[catalog.Series])},
		{"Candidates", strconv.Itoa(s.Candidates)},
		{"Rating lookups", fmt.Sprintf("%d (%d cached, %d failed)", s.Lookups.Lookups, s.Lookups.CacheHits, s.Lookups.Failures)},
		{"Admitted", strconv.Itoa(s.Admitted)},
	}
	if s.IMDbFilled > 0 {
		rows = append(rows, []string{"IMDb backfilled", strconv.Itoa(s.IMDbFilled)})
	}
	for _, reason := range catalog.Reasons {
		if n := s.Rejections[reason]; n > 0 {
			rows = append(rows, []string{"Rejected: " + string(reason), strconv.Itoa(n)})
		}
	}
	rows = append(rows,
		[]string{"Overrides merged", strconv.Itoa(s.Overrides)},
		[]string{"Duplicates dropped", strconv.Itoa(s.Duplicates)},
		[]string{"Full catalog", fmt.Sprintf("%d titles (%s)", s.Full.Records, changeLabel(s.Full.Changed()))},
		[]string{"Recent catalog", fmt.Sprintf("%d titles (%s)", s.Recent.Records, changeLabel(s.Recent.Changed()))},
		[]string{"Duration", s.Duration.Round(time.Millisecond).String()},
	)
	return renderTable(tableSpec{
		Headers: []string{"Step", "Result"},
		Aligns:  []columnAlignment{alignLeft, alignRight},
	}, rows)
}

func changeLabel(changed bool) string {
	if changed {
		return "updated"
	}
	return "unchanged"
}

type summaryView struct {
	RunID      string         `json:"run_id"`
	Candidates int            `json:"candidates"`
	Admitted   int            `json:"admitted"`
	Rejections map[string]int `json:"rejections"`
	Overrides  int            `json:"overrides"`
	Duplicates int            `json:"duplicates"`
	Full       int            `json:"full"`
	Recent     int            `json:"recent"`
	Changed    bool           `json:"changed"`
	DurationMS int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

func newSummaryView(s pipeline.Summary, runErr error) summaryView {
	view := summaryView{
		RunID:      s.RunID,
		Candidates: s.Candidates,
		Admitted:   s.Admitted,
		Rejections: make(map[string]int, len(s.Rejections)),
		Overrides:  s.Overrides,
		Duplicates: s.Duplicates,
		Full:       s.Full.Records,
		Recent:     s.Recent.Records,
		Changed:    s.Changed(),
		DurationMS: s.Duration.Milliseconds(),
	}
	for reason, n := range s.Rejections {
		view.Rejections[string(reason)] = n
	}
	if runErr != nil {
		view.Error = runErr.Error()
	}
	return view
}

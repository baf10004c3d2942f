package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"flixlist/internal/logging"
	"flixlist/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify credentials, directories and upstream reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{
				Offline: offline,
				Logger:  logging.NewNop(),
			})
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip network probes")
	return cmd
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		message := r.Detail
		switch {
		case r.Skipped:
			kind = statusInfo
			if message == "" {
				message = "skipped"
			}
		case !r.Passed:
			kind = statusError
		case message == "":
			message = "ready"
		}
		lines = append(lines, renderStatusLine(r.Name, kind, message, colorize))
	}
	return lines
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"flixlist/internal/catalog"
	"flixlist/internal/exclusions"
)

const (
	showFull       = "full"
	showRecent     = "recent"
	showExclusions = "exclusions"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:       "show [full|recent|exclusions]",
		Short:     "Display a published view or the exclusion log",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{showFull, showRecent, showExclusions},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			view := showFull
			if len(args) == 1 {
				view = strings.ToLower(strings.TrimSpace(args[0]))
			}
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}

			switch view {
			case showFull:
				return showCatalog(cmd, cfg.FullCatalogPath(), limit, jsonOutput)
			case showRecent:
				return showCatalog(cmd, cfg.RecentCatalogPath(), limit, jsonOutput)
			case showExclusions:
				path := cfg.ExclusionLogPath()
				if path == "" {
					return errors.New("exclusion log is disabled (paths.exclusion_log is empty)")
				}
				return showExclusionLog(cmd, path, limit, jsonOutput)
			default:
				return fmt.Errorf("unknown view %q (want full, recent or exclusions)", view)
			}
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many rows (0 shows all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print rows as JSON")
	return cmd
}

func showCatalog(cmd *cobra.Command, path string, limit int, jsonOutput bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s has not been written yet; run 'flixlist run' first", path)
		}
		return fmt.Errorf("read catalog: %w", err)
	}
	var records []catalog.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	total := len(records)
	records = truncate(records, limit)
	if jsonOutput {
		return writeJSON(cmd, records)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Title,
			r.Type,
			r.IMDbRating.String(),
			strconv.FormatFloat(float64(r.TraktRating), 'f', 1, 64),
			dash(r.ReleaseDate),
			dash(r.DateAdded),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
		Headers:  []string{"Title", "Type", "IMDb", "Trakt", "Released", "Added"},
		Aligns:   []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
		Caption:  caption(len(records), total),
		MaxWidth: 48,
	}, rows))
	return nil
}

func showExclusionLog(cmd *cobra.Command, path string, limit int, jsonOutput bool) error {
	entries, err := exclusions.Read(path)
	if err != nil {
		return err
	}
	total := len(entries)
	entries = truncate(entries, limit)
	if jsonOutput {
		return writeJSON(cmd, entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		id := "-"
		if e.ExternalID > 0 {
			id = strconv.FormatInt(e.ExternalID, 10)
		}
		rows = append(rows, []string{e.Title, e.MediaType.Label(), id, string(e.Reason), dash(e.Detail)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
		Headers:  []string{"Title", "Type", "TMDB", "Reason", "Detail"},
		Aligns:   []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		Caption:  caption(len(entries), total),
		MaxWidth: 48,
	}, rows))
	return nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func caption(shown, total int) string {
	if shown == total {
		return fmt.Sprintf("%d rows", total)
	}
	return fmt.Sprintf("showing %d of %d rows", shown, total)
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mpkconv/internal/config"
	"mpkconv/internal/convert"
	"mpkconv/internal/services"
	"mpkconv/internal/staging"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the datasets inside an archive without writing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			archives, err := resolveArchives(args)
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			lock, err := staging.AcquireLock(cfg.ScratchLockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			result := convert.New(cfg, logger).Inspect(cmd.Context(), archives[0])
			printInspection(cmd.OutOrStdout(), cfg, result)
			if result.Err != nil {
				return fmt.Errorf("inspect %s: %s: %w", archives[0], services.Classify(result.Err), result.Err)
			}
			return nil
		},
	}
}

func printInspection(out io.Writer, cfg *config.Config, result convert.Inspection) {
	fmt.Fprintf(out, "Archive:     %s\n", result.Archive)
	fmt.Fprintf(out, "Format:      %s\n", result.Kind)
	if result.DatasetDir != "" {
		fmt.Fprintf(out, "Dataset dir: %s\n", result.DatasetDir)
		fmt.Fprintf(out, "Fallback:    %s\n", yesNo(result.Fallback))
		fmt.Fprintf(out, "Extracted:   %d bytes\n", result.Bytes)
	}
	if result.Err != nil {
		if len(result.Tree) > 0 {
			fmt.Fprintln(out, "Extracted tree:")
			for _, line := range result.Tree {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}
		return
	}
	if len(result.Datasets) == 0 {
		fmt.Fprintf(out, "No %s datasets found\n", cfg.Layout.DatasetSuffix)
		return
	}

	rows := make([][]string, 0, len(result.Datasets))
	for _, ds := range result.Datasets {
		crsLabel := ds.CRS
		if crsLabel == "" {
			crsLabel = "none"
		}
		status := "ok"
		if ds.Err != nil {
			status = ds.Err.Error()
			crsLabel = "-"
		}
		rows = append(rows, []string{
			ds.Name,
			strconv.Itoa(ds.Features),
			crsLabel,
			ds.Encoding,
			strings.Join(ds.Fields, ", "),
			status,
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Dataset", "Features", "CRS", "Encoding", "Fields", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}

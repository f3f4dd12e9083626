package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mpkconv/internal/config"
	"mpkconv/internal/convert"
	"mpkconv/internal/fileutil"
	"mpkconv/internal/preflight"
	"mpkconv/internal/services"
)

type pathOverrides struct {
	input   string
	output  string
	scratch string
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var overrides pathOverrides

	cmd := &cobra.Command{
		Use:   "convert [archive...]",
		Short: "Convert every archive in the input directory, or only the given archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *loaded
			if err := overrides.apply(&cfg); err != nil {
				return err
			}

			results := preflight.RunAll(&cfg)
			if len(args) > 0 {
				results = withoutCheck(results, preflight.InputCheck)
			}
			if !preflight.AllPassed(results) {
				fmt.Fprintln(cmd.ErrOrStderr(), renderResults(cmd.ErrOrStderr(), results))
				return errors.New("preflight checks failed")
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			batch := convert.NewBatch(&cfg, convert.New(&cfg, logger), logger)
			var report convert.BatchReport
			if len(args) > 0 {
				archives, err := resolveArchives(args)
				if err != nil {
					return err
				}
				report, err = batch.RunArchives(runCtx, archives)
				printBatchSummary(cmd.OutOrStdout(), report)
				return err
			}
			report, err = batch.Run(runCtx)
			printBatchSummary(cmd.OutOrStdout(), report)
			return err
		},
	}

	cmd.Flags().StringVar(&overrides.input, "input", "", "Directory holding the archives (overrides paths.input_dir)")
	cmd.Flags().StringVar(&overrides.output, "output", "", "Output root directory (overrides paths.output_dir)")
	cmd.Flags().StringVar(&overrides.scratch, "scratch", "", "Scratch directory name (overrides paths.scratch_dir)")
	return cmd
}

func (o pathOverrides) apply(cfg *config.Config) error {
	changed := false
	for _, override := range []struct {
		value  string
		target *string
	}{
		{o.input, &cfg.Paths.InputDir},
		{o.output, &cfg.Paths.OutputDir},
		{o.scratch, &cfg.Paths.ScratchDir},
	} {
		value := strings.TrimSpace(override.value)
		if value == "" {
			continue
		}
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return err
		}
		*override.target = expanded
		changed = true
	}
	if !changed {
		return nil
	}
	return cfg.Validate()
}

func resolveArchives(args []string) ([]string, error) {
	archives := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := config.ExpandPath(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("resolve archive path: %w", err)
		}
		if !fileutil.Exists(path) {
			return nil, fmt.Errorf("archive %s does not exist", arg)
		}
		if fileutil.IsDir(path) {
			return nil, fmt.Errorf("archive %s is a directory", arg)
		}
		archives = append(archives, path)
	}
	return archives, nil
}

func withoutCheck(results []preflight.Result, name string) []preflight.Result {
	kept := results[:0:0]
	for _, r := range results {
		if r.Name != name {
			kept = append(kept, r)
		}
	}
	return kept
}

func printBatchSummary(out io.Writer, report convert.BatchReport) {
	if len(report.Archives) == 0 {
		fmt.Fprintln(out, "No archives converted")
		return
	}

	rows := make([][]string, 0, len(report.Archives))
	for _, ar := range report.Archives {
		rows = append(rows, []string{
			filepath.Base(ar.Archive),
			ar.Kind.String(),
			ar.Status(),
			strconv.Itoa(ar.Converted()),
			strconv.Itoa(ar.Failed()),
			ar.OutputDir,
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Archive", "Format", "Status", "Converted", "Failed", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))

	for _, ar := range report.Archives {
		if ar.Err != nil {
			fmt.Fprintf(out, "%s: %s: %v\n", filepath.Base(ar.Archive), services.Classify(ar.Err), ar.Err)
		}
		for _, res := range ar.Results {
			if res.Err != nil {
				fmt.Fprintf(out, "%s: %s: %v\n", filepath.Base(ar.Archive), filepath.Base(res.Source), res.Err)
			}
		}
	}

	converted, failedDatasets, failedArchives := report.Totals()
	fmt.Fprintf(out, "Archives: %d (%d failed)  Datasets: %d converted, %d failed  Duration: %s\n",
		len(report.Archives), failedArchives, converted, failedDatasets, report.Duration.Round(time.Millisecond))
}

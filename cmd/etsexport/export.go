package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-ets/internal/etsexport"
	"github.com/nerrad567/gray-logic-ets/internal/history"
	"github.com/nerrad567/gray-logic-ets/internal/publisher"
)

// outputFileMode is the permission of written CSV files.
const outputFileMode = 0o644

// outputDirMode is the permission of a created output directory.
const outputDirMode = 0o755

// errNoInput is returned when export runs without an overview file.
var errNoInput = errors.New("an overview file is required (-i)")

type exportOptions struct {
	input     string
	project   string
	outputDir string
	locale    string
	noHistory bool
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an ETS group-address CSV file from an overview",
		Long: `Reads a group-address overview (YAML or JSON, "-" for stdin) and writes
<project>-ets.csv, encoded as Windows-1252, to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "overview file (.yaml, .yml or .json; - for stdin)")
	f.StringVarP(&opts.project, "project", "p", "", "project name used for the file name")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory to write the file to")
	f.StringVar(&opts.locale, "locale", "", "locale recorded with the export")
	f.BoolVar(&opts.noHistory, "no-history", false, "do not record the export in the history database")

	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, opts *exportOptions) error {
	if opts.input == "" {
		return errNoInput
	}

	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}
	if opts.noHistory {
		cfg.Export.History = false
	}
	log := commandLogger(cfg, cmd.ErrOrStderr())

	project := firstNonEmpty(opts.project, cfg.Export.ProjectName)
	locale := firstNonEmpty(opts.locale, cfg.Export.Locale)
	outputDir := firstNonEmpty(opts.outputDir, cfg.Export.OutputDir)

	ov, err := readOverviewFile(opts.input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	res, err := etsexport.Export(ov, etsexport.Options{ProjectName: project})
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	if err := os.MkdirAll(outputDir, outputDirMode); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outputDir, res.Filename)
	if err := os.WriteFile(path, res.Data, outputFileMode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, path)
	fmt.Fprintf(out, "%d rows, %d main groups, %d middle groups, %d addresses\n",
		res.Stats.Rows, res.Stats.MainGroups, res.Stats.MiddleGroups, res.Stats.Addresses)
	if res.Stats.Replaced > 0 {
		fmt.Fprintf(out, "%d characters not representable in Windows-1252 were written as '?'\n", res.Stats.Replaced)
	}

	svc, err := openServices(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	rec, err := svc.publisher.Publish(cmd.Context(), publisher.Event{
		Project: project,
		Locale:  locale,
		Source:  history.SourceCLI,
		Result:  res,
	})
	if err != nil {
		return err
	}
	if rec.ID != "" {
		fmt.Fprintf(out, "recorded as %s\n", rec.ID)
	}

	return nil
}

// readOverviewFile decodes an overview. Files ending in .json are parsed as
// JSON, everything else (stdin included) as YAML, which also accepts JSON.
func readOverviewFile(path string, stdin io.Reader) (*etsexport.Overview, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	}
	if err != nil {
		return nil, fmt.Errorf("reading overview: %w", err)
	}

	var ov etsexport.Overview
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &ov)
	} else {
		err = yaml.Unmarshal(data, &ov)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing overview %s: %w", path, err)
	}

	return &ov, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-ets/internal/commissioning/etsimport"
	"github.com/nerrad567/gray-logic-ets/internal/etsexport"
)

// errMismatch is returned when a file differs from a fresh export of its overview.
var errMismatch = errors.New("file does not match the overview")

type verifyOptions struct {
	overview string
}

func newVerifyCmd() *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Read an ETS CSV file back and report what it contains",
		Long: `Parses an ETS group-address CSV file and prints its group and address
counts. With --overview the file is also compared byte for byte with a fresh
export of that overview.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.overview, "overview", "", "overview the file should have been generated from")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *verifyOptions, path string) error {
	ov, err := etsimport.ReadFile(path)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", path, err)
	}

	mainGroups, middleGroups, addresses := ov.Counts()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d main groups, %d middle groups, %d addresses\n",
		path, mainGroups, middleGroups, addresses)

	if opts.overview == "" {
		return nil
	}

	want, err := readOverviewFile(opts.overview, cmd.InOrStdin())
	if err != nil {
		return err
	}
	res, err := etsexport.Export(want, etsexport.Options{})
	if err != nil {
		return fmt.Errorf("exporting overview: %w", err)
	}

	got, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !bytes.Equal(got, res.Data) {
		return fmt.Errorf("%w: %s (%d bytes, expected %d)", errMismatch, opts.overview, len(got), len(res.Data))
	}

	fmt.Fprintf(out, "matches %s\n", opts.overview)
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	var (
		format  string
		outFile string
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the loaded tables",
		Example: `  samarth ask "Compare rainfall in Kerala and Punjab" --format text
  samarth ask "Top 5 districts by maize production in Karnataka" --format csv --out maize.csv
  samarth ask "How does rainfall affect rice production in Kerala?" --format pretty`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(format) {
				return fmt.Errorf("unknown format %q (json, pretty, text, csv)", format)
			}
			eng, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			ans, err := eng.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd.OutOrStdout(), outFile)
			if err != nil {
				return err
			}
			defer closeOut()

			if err := render(w, ans, format); err != nil {
				return err
			}
			if outFile != "" {
				fmt.Fprintf(os.Stderr, "%s %s\n", color.GreenString("written:"), outFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: json, pretty, text, csv")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write output to file instead of stdout")
	return cmd
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <question>",
		Short: "Show how a question is interpreted, without answering it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			q, err := eng.Parse(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), q, true)
		},
	}
}

func newDatasetsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the loaded tables and how they were classified",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			descriptors := eng.Corpus().Descriptors()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), descriptors, true)
			}
			writeDatasets(cmd.OutOrStdout(), descriptors)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print descriptors as JSON")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "samarth %s\n", version)
		},
	}
}

// output returns the writer for outFile, or w when outFile is empty.
// Colour is disabled for files.
func output(w io.Writer, outFile string) (io.Writer, func(), error) {
	if outFile == "" {
		return w, func() {}, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	color.NoColor = true
	return f, func() { _ = f.Close() }, nil
}

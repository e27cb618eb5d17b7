package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hwachang/gonggo/internal/backend"
	"github.com/hwachang/gonggo/internal/classify"
	"github.com/hwachang/gonggo/internal/config"
	"github.com/hwachang/gonggo/internal/export"
	"github.com/hwachang/gonggo/internal/reconstruct"
	"github.com/hwachang/gonggo/internal/tables"
)

var (
	parseMarkdown bool
	parseQuiet    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.pdf>",
	Short: "Reconstruct a single PDF and print the result",
	Long: `Parse extracts text blocks and table candidates from the given PDF and
prints the reconstructed document as JSON, or as markdown with
--markdown. Diagnostics go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(args[0], cmd.OutOrStdout())
	},
}

func init() {
	parseCmd.Flags().BoolVarP(&parseMarkdown, "markdown", "m", false, "Render the document as markdown instead of JSON")
	parseCmd.Flags().BoolVarP(&parseQuiet, "quiet", "q", false, "Suppress progress logging")
	rootCmd.AddCommand(parseCmd)
}

func runParse(path string, out io.Writer) error {
	logOut := io.Writer(os.Stderr)
	if parseQuiet {
		logOut = io.Discard
	}
	log := slog.New(slog.NewTextHandler(logOut, nil))

	cfg := config.Load()

	classifyCfg := classify.DefaultConfig()
	classifyCfg.KoreanOrdinalLevel = cfg.KoreanOrdinalLevel

	tableCfg := tables.DefaultConfig()
	tableCfg.MinConfidence = cfg.MinTableConfidence
	tableCfg.OverlapRatio = cfg.TableOverlapRatio
	tableCfg.MarginTolerance = cfg.PageMarginPts

	pages, err := backend.New(log).Extract(path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}

	doc, diags, err := reconstruct.Reconstruct(path, pages, reconstruct.Options{
		Classifier:  classifyCfg,
		Reconciler:  tableCfg,
		PageWorkers: cfg.PageWorkers,
	})
	if err != nil {
		return fmt.Errorf("reconstruct %s: %w", path, err)
	}
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}

	if parseMarkdown {
		_, err = io.WriteString(out, export.Markdown(doc))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/receiptworks/voucherscan/internal/config"
	"github.com/receiptworks/voucherscan/internal/engine"
	"github.com/receiptworks/voucherscan/internal/pdfinput"
	"github.com/receiptworks/voucherscan/internal/pipeline"
	"github.com/receiptworks/voucherscan/internal/preprocess"
)

// scanCmd processes a single voucher image or PDF.
var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Extract a structured voucher from one image or PDF",
	Long: `Process a single scanned voucher and print the extracted record.

Supported inputs: JPEG, PNG, BMP, TIFF and PDF (embedded page images).

Examples:
  voucherscan scan voucher.jpg
  voucherscan scan voucher.jpg --strategy aggressive --format text
  voucherscan scan statement.pdf --pages 2-4`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runScanCommand,
}

func init() {
	scanCmd.Flags().String("pages", "", "page range for PDF input, e.g. 1-3 or 1,4")
	scanCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	rootCmd.AddCommand(scanCmd)
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	cfg := getConfig()
	path := args[0]

	pipe, err := buildPipeline(cmd, cfg)
	if err != nil {
		return err
	}

	var results []*pipeline.Result
	if pdfinput.IsPDF(path) {
		pages, _ := cmd.Flags().GetString("pages")
		results, err = scanPDF(cmd, pipe, path, pages)
	} else {
		var res *pipeline.Result
		res, err = pipe.ProcessFile(cmd.Context(), path)
		results = []*pipeline.Result{res}
	}
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	if len(results) == 1 {
		return render(out, results[0], cfg.Output)
	}
	return render(out, results, cfg.Output)
}

func scanPDF(cmd *cobra.Command, pipe *pipeline.Pipeline, path, pages string) ([]*pipeline.Result, error) {
	extracted, err := pdfinput.ExtractPages(path, pages)
	if err != nil {
		return nil, err
	}
	results := make([]*pipeline.Result, 0, len(extracted))
	for _, page := range extracted {
		res := pipe.Process(cmd.Context(), page.Image)
		res.Path = fmt.Sprintf("%s#page=%d", path, page.Page)
		results = append(results, res)
	}
	return results, nil
}

// buildPipeline assembles the processing chain from the resolved
// configuration plus per-invocation flag overrides.
func buildPipeline(cmd *cobra.Command, cfg *config.Config) (*pipeline.Pipeline, error) {
	if langs, _ := cmd.Flags().GetString("languages"); langs != "" {
		cfg.Engine.Languages = strings.Split(langs, ",")
	}
	if cmd.Flags().Changed("strategy") {
		raw, _ := cmd.Flags().GetString("strategy")
		strategy, err := preprocess.ParseStrategy(raw)
		if err != nil {
			return nil, err
		}
		cfg.Preprocess.Strategy = strategy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng := engine.NewTesseract(cfg.Engine)
	return pipeline.New(cfg.ToPipelineConfig(), eng, nil), nil
}

func openOutput(cmd *cobra.Command) (*os.File, func(), error) {
	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

var errNoInputs = errors.New("no input files provided")

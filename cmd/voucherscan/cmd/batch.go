package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/receiptworks/voucherscan/internal/batch"
	"github.com/receiptworks/voucherscan/internal/pipeline"
)

// batchCmd processes many voucher images with a worker pool.
var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Process many voucher images in parallel",
	Long: `Process voucher images with a bounded worker pool. Directories are
walked recursively; one file's failure never aborts the rest.

Examples:
  voucherscan batch scans/
  voucherscan batch a.jpg b.jpg --workers 8 --format yaml
  voucherscan batch scans/ --output results.json`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

func init() {
	batchCmd.Flags().Int("workers", 0, "concurrent workers (default from config)")
	batchCmd.Flags().Bool("continue-on-error", true, "keep processing after per-file failures")
	batchCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	rootCmd.AddCommand(batchCmd)
}

// batchReport is the serializable batch outcome.
type batchReport struct {
	Processed int         `json:"processed" yaml:"processed"`
	Failed    int         `json:"failed" yaml:"failed"`
	Results   []batchItem `json:"results" yaml:"results"`
}

type batchItem struct {
	Path   string           `json:"path" yaml:"path"`
	Error  string           `json:"error,omitempty" yaml:"error,omitempty"`
	Result *pipeline.Result `json:"result,omitempty" yaml:"result,omitempty"`
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := getConfig()
	if cmd.Flags().Changed("workers") {
		cfg.Batch.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("continue-on-error") {
		cfg.Batch.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	pipe, err := buildPipeline(cmd, cfg)
	if err != nil {
		return err
	}

	paths, err := batch.Discover(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errNoInputs
	}

	runner := batch.NewRunner(cfg.Batch, pipe, nil)
	results := runner.Run(cmd.Context(), paths)

	report := batchReport{Results: make([]batchItem, 0, len(results))}
	for _, r := range results {
		item := batchItem{Path: r.Path, Result: r.Pipeline}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		if r.Err != nil || (r.Pipeline != nil && r.Pipeline.OCR.Failed()) {
			report.Failed++
		}
		report.Processed++
		report.Results = append(report.Results, item)
	}

	out, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := render(out, report, cfg.Output); err != nil {
		return err
	}
	if report.Failed == report.Processed {
		return fmt.Errorf("all %d files failed", report.Processed)
	}
	return nil
}

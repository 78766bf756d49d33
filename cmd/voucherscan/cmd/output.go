package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/receiptworks/voucherscan/internal/config"
	"github.com/receiptworks/voucherscan/internal/pipeline"
)

const (
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
	outputFormatText = "text"
)

// render writes any result-shaped value in the configured format.
func render(w io.Writer, v any, cfg config.OutputConfig) error {
	switch cfg.Format {
	case outputFormatYAML:
		return yaml.NewEncoder(w).Encode(v)
	case outputFormatText:
		return renderText(w, v)
	case outputFormatJSON, "":
		enc := json.NewEncoder(w)
		if cfg.Pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format: %s", cfg.Format)
	}
}

func renderText(w io.Writer, v any) error {
	switch t := v.(type) {
	case *pipeline.Result:
		return renderResultText(w, t)
	case []*pipeline.Result:
		for _, r := range t {
			if err := renderResultText(w, r); err != nil {
				return err
			}
		}
		return nil
	default:
		// fall back to YAML for shapes without a text layout
		return yaml.NewEncoder(w).Encode(v)
	}
}

func renderResultText(w io.Writer, r *pipeline.Result) error {
	var b strings.Builder
	if r.Path != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Path)
	}
	fmt.Fprintf(&b, "OCR confidence: %.1f (method %s, %d ms)\n",
		r.OCR.Confidence, r.OCR.Method, r.OCR.ProcessingTimeMS)

	if r.OCR.Failed() {
		fmt.Fprintf(&b, "OCR failed: %s\n", r.OCR.Text)
		_, err := io.WriteString(w, b.String())
		return err
	}

	if v := r.Voucher; v != nil {
		writeField(&b, "Voucher number", v.Master.VoucherNumber)
		writeField(&b, "Date", v.Master.VoucherDate)
		writeField(&b, "Supplier", v.Master.SupplierName)
		writeField(&b, "Vendor", v.Master.VendorDetails)
		writeAmount(&b, "Gross total", v.Master.GrossTotal)
		writeAmount(&b, "Total deductions", v.Master.TotalDeductions)
		writeAmount(&b, "Net total", v.Master.NetTotal)

		if len(v.Items) > 0 {
			fmt.Fprintln(&b, "Items:")
			for _, it := range v.Items {
				fmt.Fprintf(&b, "  %-24s %s\n", it.ItemName, it.Amount.String())
			}
		}
		if len(v.Deductions) > 0 {
			fmt.Fprintln(&b, "Deductions:")
			for _, d := range v.Deductions {
				fmt.Fprintf(&b, "  %-24s %s\n", d.Type, d.Amount.String())
			}
		}
		fmt.Fprintf(&b, "Parse confidence: %d\n", v.Metadata.ParseConfidence)
		for _, wmsg := range v.Metadata.Warnings {
			fmt.Fprintf(&b, "Warning: %s\n", wmsg)
		}
		for _, c := range v.Metadata.Corrections {
			fmt.Fprintf(&b, "Correction: %s\n", c)
		}
	}
	fmt.Fprintln(&b)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func writeAmount(b *strings.Builder, label string, d *decimal.Decimal) {
	if d != nil {
		fmt.Fprintf(b, "%s: %s\n", label, d.String())
	}
}

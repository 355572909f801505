package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/render"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf [id_or_number]",
	Short: "Render a text invoice suitable for PDF conversion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshOverdue(cmd.Context()); err != nil {
			return err
		}

		invoice, err := appInstance.Ledger.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		totals := appInstance.Ledger.Totals(invoice, time.Now().UTC())
		text := render.InvoiceText(invoice, totals)
		if letterhead := businessLetterhead(); letterhead != "" {
			text = letterhead + "\n" + text
		}

		output, _ := cmd.Flags().GetString("output")
		if save, _ := cmd.Flags().GetBool("save"); save && output == "" {
			output = filepath.Join(appInstance.Config.Invoice.OutputDir, invoice.Number+".txt")
		}
		if output == "" {
			fmt.Println(text)
			return nil
		}

		if err := os.WriteFile(output, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write invoice: %w", err)
		}
		fmt.Printf("✓ Invoice written to %s\n", output)
		return nil
	},
}

// businessLetterhead renders the configured business block above the invoice
// sheet, or "" when unconfigured
func businessLetterhead() string {
	b := appInstance.Config.Business
	if b.Name == "" {
		return ""
	}
	lines := []string{b.Name}
	if b.Address != "" {
		lines = append(lines, b.Address)
	}
	if b.Email != "" {
		lines = append(lines, b.Email)
	}
	if b.Phone != "" {
		lines = append(lines, b.Phone)
	}
	return strings.Join(lines, "\n")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the ledger over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshOverdue(cmd.Context()); err != nil {
			return err
		}

		var start, end *time.Time
		if cmd.Flags().Changed("start") {
			s, _ := cmd.Flags().GetString("start")
			t, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			start = &t
		}
		if cmd.Flags().Changed("end") {
			s, _ := cmd.Flags().GetString("end")
			t, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid end date: %w", err)
			}
			// Include the whole end day
			t = t.AddDate(0, 0, 1)
			end = &t
		}

		report, err := appInstance.Reports.Summary(cmd.Context(), start, end)
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		period := "all time"
		if start != nil || end != nil {
			from, to := "start", "now"
			if start != nil {
				from = start.Format("2006-01-02")
			}
			if end != nil {
				to = end.AddDate(0, 0, -1).Format("2006-01-02")
			}
			period = fmt.Sprintf("%s to %s", from, to)
		}

		fmt.Printf("Ledger summary (%s)\n", period)
		fmt.Println("----------------------------------------")
		fmt.Printf("Total invoices:   %d\n", report.TotalInvoices)
		fmt.Printf("Total invoiced:   %s\n", report.TotalInvoiced.StringFixed(2))
		fmt.Printf("Draft:            %d\n", report.DraftCount)
		fmt.Printf("Sent:             %d\n", report.SentCount)
		fmt.Printf("Paid:             %d  (%s)\n", report.PaidCount, report.PaidTotal.StringFixed(2))
		fmt.Printf("Overdue:          %d  (%s)\n", report.OverdueCount, report.OverdueTotal.StringFixed(2))
		fmt.Printf("Collection rate:  %s%%\n", report.CollectionRate.StringFixed(1))
		return nil
	},
}

var exportCSVCmd = &cobra.Command{
	Use:   "export-csv",
	Short: "Export all invoices as CSV, one row per invoice",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshOverdue(cmd.Context()); err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			return appInstance.Reports.ExportCSV(cmd.Context(), os.Stdout)
		}

		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if err := appInstance.Reports.ExportCSV(cmd.Context(), f); err != nil {
			return err
		}

		fmt.Printf("✓ Exported to %s\n", output)
		return nil
	},
}

func init() {
	pdfCmd.Flags().String("output", "", "Write the rendered invoice to a file instead of stdout")
	pdfCmd.Flags().Bool("save", false, "Write to <output_dir>/<number>.txt from config")
	reportCmd.Flags().String("start", "", "Period start date (YYYY-MM-DD)")
	reportCmd.Flags().String("end", "", "Period end date (YYYY-MM-DD)")
	exportCSVCmd.Flags().String("output", "", "Write CSV to a file instead of stdout")
}

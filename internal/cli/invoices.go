package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/repository"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/service"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty ledger",
	Long:  `Initialize the ledger database. Safe to run more than once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Migrations already ran during app startup
		fmt.Printf("Ledger initialized at %s\n", appInstance.Config.Database.Path)
		return nil
	},
}

// itemJSON mirrors the --items JSON shape. Numbers are kept as json.Number so
// they reach decimal parsing without a float64 round trip.
type itemJSON struct {
	Description string      `json:"description"`
	Qty         json.Number `json:"qty"`
	UnitPrice   json.Number `json:"unit_price"`
}

var createCmd = &cobra.Command{
	Use:   "create [client_name] [client_email]",
	Short: "Create a new draft invoice",
	Long: `Create a new draft invoice with line items.

Example:
  blackroad-invoice create "Acme Corp" billing@acme.com \
    --items '[{"description":"Web Dev","qty":10,"unit_price":150}]' \
    --tax-rate 0.1 --due-days 30`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemsRaw, _ := cmd.Flags().GetString("items")
		var rawItems []itemJSON
		if err := json.Unmarshal([]byte(itemsRaw), &rawItems); err != nil {
			return fmt.Errorf("invalid --items JSON: %w", err)
		}

		items := make([]service.LineItemInput, 0, len(rawItems))
		for _, ri := range rawItems {
			qty, err := decimal.NewFromString(ri.Qty.String())
			if err != nil {
				return fmt.Errorf("invalid qty %q: %w", ri.Qty, err)
			}
			price, err := decimal.NewFromString(ri.UnitPrice.String())
			if err != nil {
				return fmt.Errorf("invalid unit_price %q: %w", ri.UnitPrice, err)
			}
			items = append(items, service.LineItemInput{
				Description: ri.Description,
				Qty:         qty,
				UnitPrice:   price,
			})
		}

		taxStr, _ := cmd.Flags().GetString("tax-rate")
		if !cmd.Flags().Changed("tax-rate") {
			taxStr = appInstance.Config.Invoice.DefaultTaxRate
		}
		taxRate, err := parseRate("tax rate", taxStr)
		if err != nil {
			return err
		}

		discountStr, _ := cmd.Flags().GetString("discount-rate")
		discountRate, err := parseRate("discount rate", discountStr)
		if err != nil {
			return err
		}

		dueDays, _ := cmd.Flags().GetInt("due-days")
		notes, _ := cmd.Flags().GetString("notes")
		currency, _ := cmd.Flags().GetString("currency")
		if currency == "" {
			currency = appInstance.Config.Invoice.Currency
		}

		invoice, err := appInstance.Ledger.Create(cmd.Context(), service.CreateInvoiceInput{
			ClientName:   args[0],
			ClientEmail:  args[1],
			Items:        items,
			TaxRate:      taxRate,
			DiscountRate: discountRate,
			DueDays:      dueDays,
			Notes:        notes,
			Currency:     currency,
		})
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		fmt.Printf("✓ Draft invoice created: %s\n", invoice.Number)
		printInvoice(invoice)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id_or_number]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshOverdue(cmd.Context()); err != nil {
			return err
		}

		invoice, err := appInstance.Ledger.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printInvoice(invoice)
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [id_or_number]",
	Short: "Mark a draft invoice as sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := appInstance.Ledger.Send(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to send invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s marked as sent, due %s\n",
			invoice.Number, invoice.DueDate.Format("2006-01-02"))
		return nil
	},
}

var payCmd = &cobra.Command{
	Use:   "pay [id_or_number]",
	Short: "Mark a sent or overdue invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshOverdue(cmd.Context()); err != nil {
			return err
		}

		method, _ := cmd.Flags().GetString("method")

		invoice, err := appInstance.Ledger.Pay(cmd.Context(), args[0], method)
		if err != nil {
			return fmt.Errorf("failed to pay invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s paid via %s\n", invoice.Number, method)
		if invoice.OverdueFee.IsPositive() {
			fmt.Printf("  Overdue fee at payment: %s %s\n",
				invoice.OverdueFee.StringFixed(2), invoice.Currency)
		}
		printInvoice(invoice)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshOverdue(cmd.Context()); err != nil {
			return err
		}

		filter := repository.ListFilter{}
		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			s := domain.InvoiceStatus(statusStr)
			if !s.IsValid() {
				return fmt.Errorf("unknown status %q (draft, sent, paid, overdue)", statusStr)
			}
			filter.Status = &s
		}
		if cmd.Flags().Changed("client") {
			filter.Client, _ = cmd.Flags().GetString("client")
		}

		invoices, err := appInstance.Ledger.List(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		now := time.Now().UTC()
		fmt.Printf("%-15s %-24s %-9s %-12s %12s\n", "Number", "Client", "Status", "Due", "Total")
		fmt.Println("----------------------------------------------------------------------------")
		for _, invoice := range invoices {
			totals := appInstance.Ledger.Totals(invoice, now)
			fmt.Printf("%-15s %-24s %-9s %-12s %12s\n",
				invoice.Number,
				truncate(invoice.ClientName, 24),
				invoice.Status,
				invoice.DueDate.Format("2006-01-02"),
				totals.Total.StringFixed(2),
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var markOverdueCmd = &cobra.Command{
	Use:   "mark-overdue",
	Short: "Flip sent invoices past their due date to overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := appInstance.Ledger.RefreshOverdue(cmd.Context(), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to refresh overdue status: %w", err)
		}

		fmt.Printf("✓ %d invoice(s) marked overdue\n", count)
		return nil
	},
}

var overdueFeeCmd = &cobra.Command{
	Use:   "overdue-fee [id_or_number]",
	Short: "Show the overdue fee accrued by an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshOverdue(cmd.Context()); err != nil {
			return err
		}

		fee, err := appInstance.Ledger.OverdueFee(cmd.Context(), args[0], time.Now().UTC())
		if err != nil {
			return err
		}

		fmt.Printf("Overdue fee: %s\n", fee.StringFixed(2))
		return nil
	},
}

func init() {
	createCmd.Flags().String("items", "", `JSON line items: [{"description":"X","qty":1,"unit_price":100}]`)
	createCmd.Flags().String("tax-rate", "0", "Tax rate as a fraction (0.1 = 10%)")
	createCmd.Flags().String("discount-rate", "0", "Discount rate as a fraction (0.2 = 20%)")
	createCmd.Flags().Int("due-days", 0, "Days until the invoice is due (default from config)")
	createCmd.Flags().String("notes", "", "Free-form notes printed on the invoice")
	createCmd.Flags().String("currency", "", "Currency code (default from config)")
	createCmd.MarkFlagRequired("items")

	payCmd.Flags().String("method", "bank_transfer", "Payment method")

	listCmd.Flags().String("status", "", "Filter by status (draft, sent, paid, overdue)")
	listCmd.Flags().String("client", "", "Filter by client name substring")
}

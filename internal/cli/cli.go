// Package cli implements reportctl, which computes the dashboard, reports and
// receipts offline from a JSON snapshot of the backend.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"invoiceflow/backend/internal/cache"
	"invoiceflow/backend/internal/config"
	"invoiceflow/backend/internal/domain"
	"invoiceflow/backend/internal/service"
	"invoiceflow/backend/internal/store/memory"
)

type options struct {
	snapshot    string
	demo        bool
	timezone    string
	now         string
	sellerGSTIN string
	verbose     bool
}

// NewRootCommand builds the reportctl command tree. Flag defaults come from
// the same environment variables the server reads.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()
	opts := &options{
		snapshot:    cfg.SnapshotPath,
		timezone:    cfg.Timezone,
		sellerGSTIN: cfg.StoreGSTIN,
	}

	root := &cobra.Command{
		Use:   "reportctl",
		Short: "Compute InvoiceFlow reports from a snapshot",
		Long: `reportctl runs the same aggregation as the reporting server against a
JSON snapshot exported from the backend, or against built-in demo data.
Every command prints JSON on stdout.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if !opts.verbose {
				log.SetOutput(io.Discard)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.snapshot, "snapshot", opts.snapshot, "JSON snapshot file (orders, customers, items, settings)")
	flags.BoolVar(&opts.demo, "demo", false, "use built-in demo data instead of a snapshot")
	flags.StringVar(&opts.timezone, "timezone", opts.timezone, "IANA zone for day boundaries")
	flags.StringVar(&opts.now, "now", "", "evaluate as of this timestamp (default: current time)")
	flags.StringVar(&opts.sellerGSTIN, "seller-gstin", opts.sellerGSTIN, "override the seller GSTIN on receipts")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log warnings to stderr")

	root.AddCommand(
		newDashboardCommand(opts),
		newSalesCommand(opts),
		newReportsCommand(opts),
		newReceiptCommand(opts),
		newLowStockCommand(opts),
	)
	return root
}

// Execute runs reportctl with os.Args.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newDashboardCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "KPI cards, top sellers and recent orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, now, err := opts.setup()
			if err != nil {
				return err
			}
			resp, err := svc.Dashboard(cmd.Context(), now)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newSalesCommand(opts *options) *cobra.Command {
	var rangeKey string
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Daily completed sales for a range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, now, err := opts.setup()
			if err != nil {
				return err
			}
			resp, err := svc.SalesChart(cmd.Context(), rangeKey, now)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&rangeKey, "range", "7", "today, yesterday or a number of days")
	return cmd
}

func newReportsCommand(opts *options) *cobra.Command {
	var notes []string
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Quarter comparison, monthly revenue and insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, now, err := opts.setup()
			if err != nil {
				return err
			}
			resp, err := svc.Reports(cmd.Context(), now, notes)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringArrayVar(&notes, "note", nil, "append a note insight (repeatable)")
	return cmd
}

func newReceiptCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <order-id>",
		Short: "GST breakup of one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || orderID <= 0 {
				return fmt.Errorf("order id must be a positive integer, got %q", args[0])
			}
			svc, _, err := opts.setup()
			if err != nil {
				return err
			}
			resp, err := svc.Receipt(cmd.Context(), orderID)
			if err != nil {
				return fmt.Errorf("receipt %d: %w", orderID, err)
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newLowStockCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "Items at or below their reorder point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := opts.setup()
			if err != nil {
				return err
			}
			resp, err := svc.LowStock(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func (o *options) setup() (*service.Service, time.Time, error) {
	now := time.Now().UTC()
	if o.now != "" {
		now = domain.ParseTimestamp(o.now)
		if now.IsZero() {
			return nil, time.Time{}, fmt.Errorf("cannot parse --now %q", o.now)
		}
	}

	loc := time.UTC
	if o.timezone != "" {
		var err error
		loc, err = time.LoadLocation(o.timezone)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("unknown timezone %q: %w", o.timezone, err)
		}
	}

	var snapshot domain.Snapshot
	switch {
	case o.snapshot != "":
		var err error
		snapshot, err = memory.ReadSnapshotFile(o.snapshot)
		if err != nil {
			return nil, time.Time{}, err
		}
	case o.demo:
		snapshot = memory.DemoSnapshot(now)
	default:
		return nil, time.Time{}, errors.New("no data source: pass --snapshot <file> or --demo")
	}

	repo := memory.NewWithoutUsers(snapshot)
	svc := service.New(repo, cache.NoopReportCache{}, service.Options{
		Location:    loc,
		SellerGSTIN: o.sellerGSTIN,
	})
	return svc, now, nil
}

func printJSON(out io.Writer, payload any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

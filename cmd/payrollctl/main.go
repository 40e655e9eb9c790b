package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
	"github.com/warp/payroll-engine/store/backend"
)

var rootCmd = &cobra.Command{
	Use:   "payrollctl",
	Short: "Payroll classification and pricing from the command line",
	Long: `payrollctl reads the configured store (PAYROLL_DB_DRIVER, PAYROLL_DB_DSN)
and rules (PAYROLL_RULES_FILE, then the document saved through the API)
and prints what the engine computes.`,
	SilenceUsage: true,
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Monthly payroll overview of one employee",
	Long: `Print the salary, extra and grand totals of a month with per-bucket
hours and amounts.

Examples:
  payrollctl overview -e emp-001 -m 2024-01
  payrollctl overview -e emp-001 -m 2024-01 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("employee")
		monthArg, _ := cmd.Flags().GetString("month")
		asJSON, _ := cmd.Flags().GetBool("json")

		month, err := calendar.ParseMonth(monthArg)
		if err != nil {
			return err
		}

		return withEngine(cmd.Context(), month.Period(), payroll.EmployeeID(id), func(eng *payroll.Engine) error {
			o, ok := eng.MonthlyPayrollOverview(payroll.EmployeeID(id), month)
			if !ok {
				return fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, id)
			}
			r := o.Rounded()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), r)
			}
			printOverview(cmd.OutOrStdout(), r)
			return nil
		})
	},
}

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Bucket metrics of one scheduled day",
	Long: `Classify the week containing the date and print that day's buckets.

Example:
  payrollctl day -e emp-001 -d 2024-01-08`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("employee")
		dateArg, _ := cmd.Flags().GetString("date")
		showSlices, _ := cmd.Flags().GetBool("slices")

		day, err := calendar.ParseDate(dateArg)
		if err != nil {
			return err
		}

		return withEngine(cmd.Context(), calendar.WeekOf(day), payroll.EmployeeID(id), func(eng *payroll.Engine) error {
			m := eng.DayBucketMetrics(payroll.EmployeeID(id), day)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: %s h (night %s, ye %s, yp %s, illegal %s)\n",
				id, day, m.Total.StringFixed(2), m.Night.StringFixed(2),
				m.Ye.StringFixed(2), m.Yp.StringFixed(2), m.Illegal.StringFixed(2))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, k := range payroll.AllBucketKeys() {
				if h := m.Buckets.Hours(k); !h.IsZero() {
					fmt.Fprintf(tw, "  %s\t%s\n", k, h.StringFixed(2))
				}
			}
			tw.Flush()

			if showSlices {
				for _, s := range eng.ClassifyWeek(payroll.EmployeeID(id), day) {
					if s.SourceDay.Equal(day) {
						fmt.Fprintf(out, "  %s %s %2dm %s\n", s.Day, payroll.FormatClock(s.Minute), s.Minutes, payroll.KeyFor(s))
					}
				}
			}
			return nil
		})
	},
}

// defaultHolidays is what `holidays --save` writes, the same calendar the
// server seeds from.
var defaultHolidays calendar.HolidayCalendar = calendar.GreekCalendar{}

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "List (and optionally store) the Greek official holidays of a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		save, _ := cmd.Flags().GetBool("save")
		if year == 0 {
			year = calendar.Today().Year()
		}

		holidays := defaultHolidays.HolidaysIn(year)
		out := cmd.OutOrStdout()
		for _, h := range holidays {
			fmt.Fprintf(out, "%s  %-9s  %s\n", h.Date, h.Date.Weekday(), h.Name)
		}
		if !save {
			return nil
		}

		ctx := cmd.Context()
		cfg, s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		for _, h := range holidays {
			h.ID = calendar.SeededHolidayID(h.Date)
			if err := s.SaveHoliday(ctx, h); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "saved %d holidays to %s store\n", len(holidays), cfg.DBDriver)
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rules document",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		ctx := cmd.Context()
		cfg, s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		rules, err := effectiveRules(ctx, cfg, s)
		if err != nil {
			return err
		}
		return config.EncodeRules(cmd.OutOrStdout(), rules, config.Format(format))
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer()
		if err != nil {
			return err
		}
		msg, err := backend.Migrate(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	overviewCmd.Flags().StringP("employee", "e", "", "Employee id")
	overviewCmd.Flags().StringP("month", "m", "", "Month (YYYY-MM)")
	overviewCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	overviewCmd.MarkFlagRequired("employee")
	overviewCmd.MarkFlagRequired("month")

	dayCmd.Flags().StringP("employee", "e", "", "Employee id")
	dayCmd.Flags().StringP("date", "d", "", "Day (YYYY-MM-DD)")
	dayCmd.Flags().Bool("slices", false, "Also print the day's classified slices")
	dayCmd.MarkFlagRequired("employee")
	dayCmd.MarkFlagRequired("date")

	holidaysCmd.Flags().IntP("year", "y", 0, "Year (default: current year)")
	holidaysCmd.Flags().Bool("save", false, "Store the holidays in the configured database")

	rulesCmd.Flags().StringP("format", "f", string(config.FormatTOML), "Output format: toml or json")

	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func openStore(ctx context.Context) (config.Server, store.Store, error) {
	cfg, err := config.LoadServer()
	if err != nil {
		return config.Server{}, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return config.Server{}, nil, err
	}
	return cfg, s, nil
}

// effectiveRules mirrors the server: the rules file, replaced by the stored
// document when one exists.
func effectiveRules(ctx context.Context, cfg config.Server, s store.Store) (payroll.RuleConfig, error) {
	rec, err := s.GetRules(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return config.LoadRules(cfg.RulesFile)
	}
	if err != nil {
		return payroll.RuleConfig{}, err
	}
	return config.ParseRules(rec.Document, config.FormatJSON)
}

func withEngine(ctx context.Context, period calendar.Period, id payroll.EmployeeID, fn func(*payroll.Engine) error) error {
	cfg, s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	rules, err := effectiveRules(ctx, cfg, s)
	if err != nil {
		return err
	}
	ds, err := store.LoadDataset(ctx, s, period, id)
	if err != nil {
		return err
	}
	if _, ok := ds.Employee(id); !ok {
		return fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, id)
	}
	return fn(payroll.NewEngine(ds, rules))
}

func printOverview(w io.Writer, o payroll.PayrollOverview) {
	fmt.Fprintf(w, "%s %s (%s, base rate %s)\n", o.EmployeeID, o.Month, o.PayType, o.BaseHourlyRate.StringFixed(4))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "bucket\thours\tamount\t")
	for _, k := range payroll.AllBucketKeys() {
		h, ok := o.Hours[k]
		if !ok {
			continue
		}
		amount := "-"
		if a, ok := o.Amounts[k]; ok {
			amount = a.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", k, h.StringFixed(2), amount)
	}
	tw.Flush()

	if o.PayType == payroll.PayMonthly {
		fmt.Fprintf(w, "unpaid absence days: %d\n", o.UnpaidAbsenceDays)
	}
	fmt.Fprintf(w, "salary %s  extra %s  total %s\n",
		o.SalaryTotal.StringFixed(2), o.ExtraTotal.StringFixed(2), o.GrandTotal.StringFixed(2))
}

func printJSON(w io.Writer, o payroll.PayrollOverview) error {
	hours := make(map[string]string, len(o.Hours))
	for k, v := range o.Hours {
		hours[k.String()] = v.StringFixed(2)
	}
	amounts := make(map[string]string, len(o.Amounts))
	for k, v := range o.Amounts {
		amounts[k.String()] = v.StringFixed(2)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"employee_id":         o.EmployeeID,
		"month":               o.Month,
		"pay_type":            o.PayType,
		"base_hourly_rate":    o.BaseHourlyRate.StringFixed(4),
		"salary_total":        o.SalaryTotal.StringFixed(2),
		"extra_total":         o.ExtraTotal.StringFixed(2),
		"grand_total":         o.GrandTotal.StringFixed(2),
		"unpaid_absence_days": o.UnpaidAbsenceDays,
		"hours":               hours,
		"amounts":             amounts,
	})
}

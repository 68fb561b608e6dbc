/*
main.go - paybook command-line interface

PURPOSE:
  A terminal front door over the same engine and SQLite store the HTTP
  server uses. Useful for quick entry and for checking totals without a
  browser.

COMMANDS:
  paybook add --date 2025-03-10 --kind work --start 09:00 --end 18:00
  paybook add --date 2025-03-10 --kind drive --start 22:00 --end 23:00 --km 50
  paybook add --date 2025-03-10 --kind other --amount -500
  paybook list --date 2025-03-10
  paybook delete 12
  paybook day --date 2025-03-10
  paybook month --year 2025 --month 3
  paybook period --year 2025 --month 3
  paybook settings
  paybook settings --base 1200 --drive 1050 --closing 25

  The database defaults to PAYBOOK_DB_PATH or ./paybook.db; --db
  overrides. --owner scopes records in multi-user databases.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shiftwork/paybook/logger"
	"github.com/shiftwork/paybook/pay"
	"github.com/shiftwork/paybook/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the wired store and calculator into every subcommand.
type app struct {
	store *sqlite.Store
	calc  *pay.Calculator
	owner string
}

func newRootCmd() *cobra.Command {
	var (
		dbPath string
		owner  string
		a      app
	)

	root := &cobra.Command{
		Use:           "paybook",
		Short:         "Daily wage ledger and pay computation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = os.Getenv("PAYBOOK_DB_PATH")
			}
			if dbPath == "" {
				dbPath = "paybook.db"
			}
			store, err := sqlite.New(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			a.store = store
			a.calc = pay.NewCalculator(store, store, logger.New(false))
			a.owner = owner
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.store != nil {
				a.store.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path")
	root.PersistentFlags().StringVar(&owner, "owner", "default", "record owner")

	root.AddCommand(
		newAddCmd(&a),
		newListCmd(&a),
		newDeleteCmd(&a),
		newDayCmd(&a),
		newMonthCmd(&a),
		newPeriodCmd(&a),
		newSettingsCmd(&a),
	)
	return root
}

// =============================================================================
// RECORD COMMANDS
// =============================================================================

func newAddCmd(a *app) *cobra.Command {
	var (
		dateStr, kindStr, startStr, endStr string
		km                                 float64
		amount                             int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := pay.ParseDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			rec := pay.ActivityRecord{
				Owner:      a.owner,
				Date:       date,
				Kind:       pay.Kind(strings.ToUpper(kindStr)),
				DistanceKm: decimal.NewFromFloat(km),
				Adjustment: amount,
			}
			if rec.Kind.Interval() {
				if rec.Start, err = parseClock(startStr); err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				if rec.End, err = parseClock(endStr); err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
			}
			if err := rec.Validate(); err != nil {
				return err
			}

			id, err := a.store.Append(context.Background(), rec)
			if err != nil {
				return err
			}
			fmt.Printf("added record %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", pay.Today().String(), "logical day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&kindStr, "kind", "work", "work | break | drive | drive_direct | other")
	cmd.Flags().StringVar(&startStr, "start", "", "start time HH:MM, hours up to 33")
	cmd.Flags().StringVar(&endStr, "end", "", "end time HH:MM, exclusive")
	cmd.Flags().Float64Var(&km, "km", 0, "trip distance for drive kinds")
	cmd.Flags().Int64Var(&amount, "amount", 0, "signed adjustment for kind other")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one day's records",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := pay.ParseDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			records := a.calc.RecordsForDate(context.Background(), a.owner, date)
			if len(records) == 0 {
				fmt.Println("no records")
				return nil
			}
			for _, r := range records {
				switch r.Kind {
				case pay.KindOther:
					fmt.Printf("%4d  %-12s  %+d\n", r.ID, r.Kind, r.Adjustment)
				case pay.KindDrive, pay.KindDriveDirect:
					fmt.Printf("%4d  %-12s  %s – %s  %s km\n", r.ID, r.Kind, r.Start, r.End, r.DistanceKm)
				default:
					fmt.Printf("%4d  %-12s  %s – %s\n", r.ID, r.Kind, r.Start, r.End)
				}
			}
			total := a.calc.ComputeDay(context.Background(), a.owner, date)
			fmt.Printf("\n%s: %dh%02dm  ¥%d\n", date, total.Minutes/60, total.Minutes%60, total.Pay)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", pay.Today().String(), "logical day (YYYY-MM-DD)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return a.store.DeleteByID(context.Background(), id)
		},
	}
}

// =============================================================================
// COMPUTATION COMMANDS
// =============================================================================

func newDayCmd(a *app) *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Compute one day's pay",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := pay.ParseDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			total := a.calc.ComputeDay(context.Background(), a.owner, date)
			fmt.Printf("%s  %dh%02dm  ¥%d\n", date, total.Minutes/60, total.Minutes%60, total.Pay)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", pay.Today().String(), "logical day (YYYY-MM-DD)")
	return cmd
}

func newMonthCmd(a *app) *cobra.Command {
	year, month := monthFlags()

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Compute a calendar month with per-day breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary := a.calc.ComputeCalendarMonth(context.Background(), a.owner, *year, time.Month(*month))

			dates := make([]pay.Date, 0, len(summary.Days))
			for d := range summary.Days {
				dates = append(dates, d)
			}
			sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

			for _, d := range dates {
				day := summary.Days[d]
				fmt.Printf("%s  %3dh%02dm  ¥%d\n", d, day.Minutes/60, day.Minutes%60, day.Pay)
			}
			fmt.Printf("\n%d-%02d total: %dh%02dm  ¥%d\n",
				*year, *month, summary.Total.Minutes/60, summary.Total.Minutes%60, summary.Total.Pay)
			return nil
		},
	}

	cmd.Flags().IntVar(year, "year", pay.Today().Year(), "year")
	cmd.Flags().IntVar(month, "month", int(pay.Today().Month()), "month 1-12")
	return cmd
}

func newPeriodCmd(a *app) *cobra.Command {
	year, month := monthFlags()

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Compute the pay period ending in a month (closing-day rule)",
		RunE: func(cmd *cobra.Command, args []string) error {
			period := a.calc.ComputePayPeriod(context.Background(), a.owner, *year, time.Month(*month))
			fmt.Printf("%s  %dh%02dm  ¥%d\n",
				period.Label, period.Total.Minutes/60, period.Total.Minutes%60, period.Total.Pay)
			return nil
		},
	}

	cmd.Flags().IntVar(year, "year", pay.Today().Year(), "year")
	cmd.Flags().IntVar(month, "month", int(pay.Today().Month()), "month 1-12")
	return cmd
}

// =============================================================================
// SETTINGS COMMAND
// =============================================================================

func newSettingsCmd(a *app) *cobra.Command {
	var (
		base, drive int64
		closing     int
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change wage settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s := pay.LoadSettings(ctx, a.store, a.owner)

			changed := false
			if cmd.Flags().Changed("base") {
				s.BaseHourlyWage, changed = base, true
			}
			if cmd.Flags().Changed("drive") {
				s.DriveHourlyWage, changed = drive, true
			}
			if cmd.Flags().Changed("closing") {
				if closing < 1 || closing > 31 {
					return fmt.Errorf("--closing must be 1..31")
				}
				s.ClosingDay, changed = closing, true
			}
			if changed {
				if err := pay.SaveSettings(ctx, a.store, a.owner, s); err != nil {
					return err
				}
			}

			fmt.Printf("base hourly wage:  %d\n", s.BaseHourlyWage)
			fmt.Printf("drive hourly wage: %d\n", s.DriveHourlyWage)
			fmt.Printf("closing day:       %d\n", s.ClosingDay)
			return nil
		},
	}

	cmd.Flags().Int64Var(&base, "base", 0, "base hourly wage")
	cmd.Flags().Int64Var(&drive, "drive", 0, "drive hourly wage")
	cmd.Flags().IntVar(&closing, "closing", 0, "closing day 1-31 (31 = calendar months)")
	return cmd
}

// =============================================================================
// HELPERS
// =============================================================================

// parseClock parses "HH:MM" where HH may run past 23 for times after
// midnight on the same logical day ("25:30" = 1:30 AM next day).
func parseClock(s string) (pay.ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return pay.ClockTime{}, fmt.Errorf("want HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return pay.ClockTime{}, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return pay.ClockTime{}, err
	}
	ct := pay.ClockTime{Hour: h, Minute: m}
	if !ct.Valid() {
		return pay.ClockTime{}, fmt.Errorf("time %q out of range", s)
	}
	return ct, nil
}

func monthFlags() (*int, *int) {
	return new(int), new(int)
}

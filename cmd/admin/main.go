// Package main is the operator CLI for the learning hub. It talks directly
// to the database, so it can repair aggregates even when the API server is
// down.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/orbita-hub/orbita-learning-hub/config"
	"github.com/orbita-hub/orbita-learning-hub/internal/application/command"
	"github.com/orbita-hub/orbita-learning-hub/internal/infrastructure/persistence/postgres"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
	"github.com/orbita-hub/orbita-learning-hub/pkg/timeutil"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	bold   = color.New(color.Bold)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		red.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hubadmin",
		Short:         "Operator tooling for the learning hub XP engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newReconcileCmd(),
		newSyncLevelCmd(),
		newSyncCeilingCmd(),
	)
	return root
}

// connect opens a database connection from DATABASE_URL.
func connect(ctx context.Context) (*postgres.Connection, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return postgres.NewConnection(ctx, postgres.Config{
		URL:            cfg.Database.URL,
		MaxConns:       2,
		MinConns:       1,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
}

// quietLogger keeps handler logs out of the CLI output.
func quietLogger() *logger.Logger {
	return logger.New(os.Stderr, logger.LevelError)
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATE
// ══════════════════════════════════════════════════════════════════════════════

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.Migrate(cmd.Context()); err != nil {
				return err
			}
			green.Println("migrations applied")
			return nil
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILE
// ══════════════════════════════════════════════════════════════════════════════

func newReconcileCmd() *cobra.Command {
	var (
		userID string
		month  int
		year   int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute xp_mensal from the ledger for one month",
		Long: "Recomputes the monthly XP total from the event ledger and compares it " +
			"to the stored aggregate. With --dry-run (the default) drift is reported " +
			"but not written.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			handler := command.NewReconcileMonthlyXPHandler(
				postgres.NewLedgerRepository(conn),
				postgres.NewAggregateRepository(conn),
				nil,
				quietLogger(),
			)

			m := time.Month(month)
			y := year
			if month == 0 && year == 0 {
				y, m = timeutil.CurrentMonth(time.Now())
			}
			bold.Printf("reconciling %s %d", m, y)
			if dryRun {
				yellow.Print(" (dry run)")
			}
			fmt.Println()

			if userID != "" {
				result, err := handler.Handle(cmd.Context(), command.ReconcileMonthlyXPCommand{
					UserID: userID,
					Month:  m,
					Year:   y,
					DryRun: dryRun,
				})
				if err != nil {
					return err
				}
				printReconcileRow(result, dryRun)
				return nil
			}

			result, err := handler.HandleAll(cmd.Context(), m, y, dryRun)
			if err != nil {
				return err
			}
			for _, row := range result.Results {
				printReconcileRow(row, dryRun)
			}
			printFailures(result.Errors)

			fmt.Printf("%d users checked, %d drifted, %d applied, %d failed\n",
				result.TotalUsers, result.DriftedUsers, result.AppliedUsers, len(result.Errors))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "reconcile a single user")
	cmd.Flags().IntVar(&month, "month", 0, "month (1-12, default: current UTC month)")
	cmd.Flags().IntVar(&year, "year", 0, "year (default: current UTC year)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "report drift without writing")
	return cmd
}

func printReconcileRow(r *command.ReconcileMonthlyXPResult, dryRun bool) {
	if !r.Drifted() {
		return
	}
	verb := "would set"
	if !dryRun {
		verb = "set"
	}
	fmt.Printf("  %s: xp_mensal %s -> %s (%s, %d events)\n",
		r.UserID,
		red.Sprint(r.PreviousXPMonthly),
		green.Sprint(r.NewXPMonthly),
		verb,
		len(r.CountedEvents),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// SYNC LEVEL
// ══════════════════════════════════════════════════════════════════════════════

func newSyncLevelCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sync-level",
		Short: "Recompute levels from lifetime XP and fix drift",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			handler := command.NewSyncLevelHandler(postgres.NewAggregateRepository(conn), quietLogger())

			var result *command.SyncLevelResult
			if userID != "" {
				result, err = handler.HandleUser(cmd.Context(), userID)
			} else {
				result, err = handler.HandleAll(cmd.Context())
			}
			if err != nil {
				return err
			}

			for _, fix := range result.Fixes {
				fmt.Printf("  %s: level %s -> %s (xp=%d)\n",
					fix.UserID,
					red.Sprint(int(fix.PreviousLevel)),
					green.Sprint(int(fix.NewLevel)),
					fix.XP,
				)
			}
			printFailures(result.Errors)
			fmt.Printf("%d users checked, %d fixed, %d failed\n",
				result.CheckedUsers, len(result.Fixes), len(result.Errors))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "sync a single user")
	return cmd
}

// ══════════════════════════════════════════════════════════════════════════════
// SYNC CEILING
// ══════════════════════════════════════════════════════════════════════════════

func newSyncCeilingCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sync-ceiling",
		Short: "Clamp xp_mensal down to lifetime xp where it exceeds it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			handler := command.NewSyncMonthlyCeilingHandler(postgres.NewAggregateRepository(conn), quietLogger())

			var result *command.SyncCeilingResult
			if userID != "" {
				result, err = handler.HandleUser(cmd.Context(), userID)
			} else {
				result, err = handler.HandleAll(cmd.Context())
			}
			if err != nil {
				return err
			}

			for _, fix := range result.Fixes {
				fmt.Printf("  %s: xp_mensal %s -> %s (xp=%d)\n",
					fix.UserID,
					red.Sprint(fix.PreviousXPMonthly),
					green.Sprint(fix.NewXPMonthly),
					fix.XP,
				)
			}
			printFailures(result.Errors)
			fmt.Printf("%d users checked, %d clamped, %d failed\n",
				result.CheckedUsers, len(result.Fixes), len(result.Errors))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "sync a single user")
	return cmd
}

// printFailures lists per-user errors in a stable order.
func printFailures(failed map[string]error) {
	if len(failed) == 0 {
		return
	}
	users := make([]string, 0, len(failed))
	for u := range failed {
		users = append(users, u)
	}
	sort.Strings(users)
	for _, u := range users {
		red.Printf("  %s: %v\n", u, failed[u])
	}
}

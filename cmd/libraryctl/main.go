package main

import (
	"fmt"
	"os"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/services"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Administrative tool for the LibraryHub circulation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newSweepCmd(),
		newFineQuoteCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the circulation tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			if err := models.AutoMigrate(db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Database migration completed")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the development catalog and accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			return config.NewSeeder(db).Run()
		},
	}
}

func newSweepCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the overdue sweep once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			clock, err := clockAt(at)
			if err != nil {
				return err
			}

			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			svc := services.NewContainer(repositories.NewStore(db), clock, cfg.Policy)
			result, err := svc.Overdue.Run(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "run as of this date (YYYY-MM-DD), default now")
	return cmd
}

func newFineQuoteCmd() *cobra.Command {
	var due, on string

	cmd := &cobra.Command{
		Use:   "fine-quote",
		Short: "Compute the fine for a due date without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := time.Parse(dateLayout, due)
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			clock, err := clockAt(on)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			fines := services.NewFineService(nil, clock, cfg.Policy)
			amount := fines.CalculateFineAmount(dueDate, clock.Now())

			return printJSON(cmd, map[string]string{
				"due_date":     dueDate.Format(dateLayout),
				"settled_on":   clock.Now().Format(dateLayout),
				"fine_per_day": cfg.Policy.FinePerDay.StringFixed(2),
				"amount":       amount.StringFixed(2),
			})
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "loan due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&on, "on", "", "settlement date (YYYY-MM-DD), default today")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func connect() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	config.SetupLogger(cfg)

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func clockAt(date string) (services.Clock, error) {
	if date == "" {
		return services.SystemClock(), nil
	}
	at, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return services.FixedClock{At: at}, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

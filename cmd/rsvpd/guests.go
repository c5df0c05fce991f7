package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-wedding-rsvp/internal/repo"
	"github.com/tbourn/go-wedding-rsvp/internal/services"
	"github.com/tbourn/go-wedding-rsvp/internal/sysutil"
)

type dbFlags struct {
	driver string
	dsn    string
}

func (f *dbFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "driver", "", "Database driver: sqlite, postgres or mysql (default $DB_DRIVER or sqlite)")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "Database DSN (default $DB_DSN)")
}

func (f *dbFlags) resolved() (driver, dsn string) {
	return sysutil.FirstNonEmpty(f.driver, os.Getenv("DB_DRIVER"), "sqlite"),
		sysutil.FirstNonEmpty(f.dsn, os.Getenv("DB_DSN"))
}

// open connects and migrates the directory. A blank DSN yields a nil DB.
func (f *dbFlags) open() (*gorm.DB, error) {
	driver, dsn := f.resolved()
	if dsn == "" {
		return nil, nil
	}
	db, err := repo.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		_ = repo.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func newImportGuestsCommand() *cobra.Command {
	var db dbFlags

	cmd := &cobra.Command{
		Use:   "import-guests <csv>",
		Short: "Import guests from a CSV of code,name,plus_one_allowed,plus_one_name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.open()
			if err != nil {
				return err
			}
			if conn == nil {
				return fmt.Errorf("no database configured: pass --dsn or set DB_DSN")
			}
			defer func() { _ = repo.Close(conn) }()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := services.NewAdminService(conn).ImportGuests(commandContext(cmd), f)
			if res != nil {
				for _, r := range res.Rejected {
					fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %s %s\n", r.Line, r.Reason, services.FormatCode(r.Code))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d guests, rejected %d\n", res.Imported, len(res.Rejected))
			}
			return err
		},
	}
	db.register(cmd)
	return cmd
}

func newGenerateCodesCommand() *cobra.Command {
	var (
		db dbFlags
		n  int
	)

	cmd := &cobra.Command{
		Use:   "generate-codes",
		Short: "Print unused invitation codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < 1 {
				return fmt.Errorf("-n must be at least 1")
			}
			conn, err := db.open()
			if err != nil {
				return err
			}
			if conn != nil {
				defer func() { _ = repo.Close(conn) }()
			}

			codes, err := services.NewAdminService(conn).GenerateCodes(commandContext(cmd), n)
			if err != nil {
				return err
			}
			for _, c := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), services.FormatCode(c))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 1, "Number of codes to generate")
	db.register(cmd)
	return cmd
}

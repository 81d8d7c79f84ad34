package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/db"
	"github.com/example/auditplus/internal/wire"
)

// InitCmd returns the init command.
func InitCmd() *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and seed defaults",
		Long: `Create the database, apply the schema and seed the default admin user,
catalogs and criticality weights. Safe to run more than once.

Examples:
  auditplus init
  auditplus init --demo
  AUDITPLUS_DB_PATH=/tmp/audit.db auditplus init`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()
			path, err := db.ExpandPath(cfg.Database.Path)
			if err != nil {
				return err
			}
			database, err := db.Open(path)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.SeedDefaults(database, demo); err != nil {
				return err
			}
			fmt.Printf("✓ Database ready at %s\n", path)
			fmt.Printf("  Default login: %s / %s (change it with 'auditplus user passwd')\n",
				db.DefaultAdminUsername, db.DefaultAdminPassword)
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "Also create demo users for each role")
	return cmd
}

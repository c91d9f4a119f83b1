package cli

import (
	"fmt"
	"log"

	"github.com/axellelanca/visitorpulse/cmd"
	"github.com/axellelanca/visitorpulse/internal/database"
	"github.com/spf13/cobra"
)

// MigrateCmd represents the 'migrate' command
// This command handles database schema creation and updates
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database (SQLite)
and executes GORM automatic migrations to create the 'visitors' and 'sessions'
tables based on the Go models.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := cmd.MustConfig()

		db, err := database.Open(cfg.Database.Name, cfg.Database.BusyTimeoutMs)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}

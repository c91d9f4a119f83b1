package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/axellelanca/visitorpulse/cmd"
	"github.com/axellelanca/visitorpulse/internal/database"
	"github.com/axellelanca/visitorpulse/internal/monitor"
	"github.com/axellelanca/visitorpulse/internal/repository"
	"github.com/spf13/cobra"
)

// ExpireSessionsCmd runs a single session expiry pass, for deployments that
// schedule expiry outside the server process.
var ExpireSessionsCmd = &cobra.Command{
	Use:   "expire-sessions",
	Short: "Deactivates sessions without a recent heartbeat.",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := cmd.MustConfig()

		db, err := database.Open(cfg.Database.Name, cfg.Database.BusyTimeoutMs)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		timeout := time.Duration(cfg.Sessions.TimeoutMinutes) * time.Minute
		// No ticker here: the interval is unused by a single pass
		sessionMonitor := monitor.NewSessionMonitor(repository.NewSessionRepository(db), timeout, 0)

		expired := sessionMonitor.ExpireSessions()
		fmt.Printf("%d session(s) expirée(s).\n", expired)
	},
}

func init() {
	cmd.RootCmd.AddCommand(ExpireSessionsCmd)
}

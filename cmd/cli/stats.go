package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/axellelanca/visitorpulse/cmd"
	"github.com/axellelanca/visitorpulse/internal/database"
	"github.com/axellelanca/visitorpulse/internal/repository"
	"github.com/axellelanca/visitorpulse/internal/services"
	"github.com/spf13/cobra"
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the current visitor statistics",
	Long:  `Compute the statistics snapshot served on GET / and print it.`,
	Args:  cobra.NoArgs,
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats exécute la logique pour la commande stats
func runStats(_ *cobra.Command, _ []string) {
	cfg := cmd.MustConfig()

	db, err := database.Open(cfg.Database.Name, cfg.Database.BusyTimeoutMs)
	if err != nil {
		log.Fatalf("Échec de la connexion à la base de données : %v", err)
	}
	defer database.Close(db)

	statsService := services.NewStatsService(repository.NewStatsRepository(db))

	snapshot, err := statsService.GetStats(context.Background())
	if err != nil {
		log.Fatalf("Error retrieving statistics: %v", err)
	}

	fmt.Printf("Statistiques générées le %s\n", snapshot.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Visiteurs: %d (%d sur les dernières 24h)\n", snapshot.TotalVisitors, snapshot.VisitorsLast24h)
	fmt.Printf("Sessions: %d (%d actives)\n", snapshot.TotalSessions, snapshot.ActiveSessions)
	fmt.Printf("Actions: %d (%.2f par session)\n", snapshot.TotalActions, snapshot.AvgActionsPerSession)
	for _, country := range snapshot.TopCountries {
		fmt.Printf("  %s: %d\n", country.CountryCode, country.Visitors)
	}
}

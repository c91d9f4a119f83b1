package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/axellelanca/visitorpulse/cmd"
	"github.com/axellelanca/visitorpulse/internal/database"
	"github.com/axellelanca/visitorpulse/internal/repository"
	"github.com/axellelanca/visitorpulse/internal/services"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var sqlFlag string

// QueryCmd représente la commande 'query'
var QueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Runs an ad-hoc SELECT against the database and prints the JSON result.",
	Long: `This command applies the same SELECT-only filter as POST /query and prints
the same payload.

Exemple:
  visitorpulse query --sql="SELECT country_code, COUNT(*) AS n FROM visitors GROUP BY country_code"`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := cmd.MustConfig()

		db, err := database.Open(cfg.Database.Name, cfg.Database.BusyTimeoutMs)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		queryService := services.NewQueryService(repository.NewQueryRepository(db))
		result := queryService.Run(context.Background(), sqlFlag)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		fmt.Println(string(out))

		if result.Error != "" {
			os.Exit(1)
		}
	},
}

func init() {
	QueryCmd.Flags().StringVar(&sqlFlag, "sql", "", "The SELECT statement to run")
	QueryCmd.MarkFlagRequired("sql")

	cmd.RootCmd.AddCommand(QueryCmd)
}

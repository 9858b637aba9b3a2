package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/jon4hz/cinetro/internal/database"
	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display the number of records per content kind and when the catalog last changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		db, err := database.New(cfg.Database, log.GetLevel() == log.DebugLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Genres:           %s\n", humanize.Comma(stats.Genres))
		fmt.Printf("Movies:           %s\n", humanize.Comma(stats.Movies))
		fmt.Printf("Bongo Movies:     %s\n", humanize.Comma(stats.BongoMovies))
		fmt.Printf("TV Shows:         %s\n", humanize.Comma(stats.TVShows))
		fmt.Printf("  Seasons:        %s\n", humanize.Comma(stats.Seasons))
		fmt.Printf("  Episodes:       %s\n", humanize.Comma(stats.Episodes))
		fmt.Printf("  Download Links: %s\n", humanize.Comma(stats.DownloadLinks))
		fmt.Printf("Live Streams:     %s\n", humanize.Comma(stats.LiveStreams))
		fmt.Printf("Contact Messages: %s\n", humanize.Comma(stats.ContactMessages))
		fmt.Printf("Total Content:    %s\n", humanize.Comma(stats.Total()))

		if stats.LastUpdated != nil {
			fmt.Printf("Last Updated:     %s (%s)\n", stats.LastUpdated.Format("2006-01-02 15:04:05"), timediff.TimeDiff(*stats.LastUpdated))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}

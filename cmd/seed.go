package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/cinetro/internal/database"
	"github.com/jon4hz/cinetro/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load catalog content from a YAML file",
	Long: `Load genres, movies, bongo movies, TV shows and live streams from a YAML file into the database.

Genres are matched by name and created when missing. Loading stops at the first invalid record.`,
	Example: `cinetro seed catalog.yml
cinetro seed catalog.yml -c /path/to/config.yml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		cat, err := seed.Load(args[0])
		if err != nil {
			return err
		}

		db, err := database.New(cfg.Database, log.GetLevel() == log.DebugLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		res, err := seed.Apply(cmd.Context(), db, cat)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}

		fmt.Printf("Seeded %d genres, %d movies, %d bongo movies, %d TV shows and %d live streams\n",
			res.Genres, res.Movies, res.BongoMovies, res.TVShows, res.LiveStreams)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
